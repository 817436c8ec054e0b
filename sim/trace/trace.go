package trace

import "fmt"

// ActionLog collects action records during a simulation run, in the order they
// happened.
//
// Thread-safety: NOT thread-safe. Appends are made by the running simulation
// process only.
type ActionLog struct {
	records []ActionRecord
}

// NewActionLog creates an empty ActionLog ready for recording.
func NewActionLog() *ActionLog {
	return &ActionLog{
		records: make([]ActionRecord, 0),
	}
}

// Append adds a record to the end of the log. Panics if the record is older than
// the last one, since virtual time never goes backwards.
func (l *ActionLog) Append(record ActionRecord) {
	if n := len(l.records); n > 0 && record.Time < l.records[n-1].Time {
		panic(fmt.Sprintf("action log out of order: %d < %d", record.Time, l.records[n-1].Time))
	}
	l.records = append(l.records, record)
}

// Len returns the number of records.
func (l *ActionLog) Len() int {
	return len(l.records)
}

// Records returns a copy of all records in order.
func (l *ActionLog) Records() []ActionRecord {
	out := make([]ActionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// ForGate returns the records of one gate, in order.
func (l *ActionLog) ForGate(gateID int) []ActionRecord {
	var out []ActionRecord
	for _, r := range l.records {
		if r.GateID == gateID {
			out = append(out, r)
		}
	}
	return out
}

// Since returns the records appended after the first n, so callers can take a
// length snapshot and inspect what a step added.
func (l *ActionLog) Since(n int) []ActionRecord {
	if n >= len(l.records) {
		return nil
	}
	out := make([]ActionRecord, len(l.records)-n)
	copy(out, l.records[n:])
	return out
}

// ReplayClosed derives a gate's position from the log alone: true (closed) only if
// its last position-changing record is GateClosed. Failures leave the position as
// it was; a completed maintenance reopens the gate.
func ReplayClosed(records []ActionRecord, gateID int) bool {
	closed := false
	for _, r := range records {
		if r.GateID != gateID {
			continue
		}
		switch r.Kind {
		case GateClosed:
			closed = true
		case GateOpened, MaintenanceCompleted:
			closed = false
		}
	}
	return closed
}
