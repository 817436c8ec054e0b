package process

// resumeEntry wraps a suspended process with the time it should resume at and a
// sequence ID for deterministic FIFO tie-breaking when times are equal.
type resumeEntry struct {
	at    int64
	seqID int64
	proc  *Process
}

// resumeQueue is a min-heap ordered by (at, seqID).
// Implements heap.Interface.
type resumeQueue []resumeEntry

func (q resumeQueue) Len() int { return len(q) }

func (q resumeQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seqID < q[j].seqID
}

func (q resumeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *resumeQueue) Push(x any) {
	*q = append(*q, x.(resumeEntry))
}

func (q *resumeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = resumeEntry{}
	*q = old[:n-1]
	return item
}
