package trace

// LogSummary aggregates statistics from an action log.
type LogSummary struct {
	TotalRecords   int
	ByKind         map[ActionKind]int
	Actuations     int // successful and failed actuations
	Failures       int
	GatesTouched   int
	PerGateActions map[int]int // gate ID → count of records naming it
}

// Summarize computes aggregate statistics from records.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []ActionRecord) *LogSummary {
	summary := &LogSummary{
		ByKind:         make(map[ActionKind]int),
		PerGateActions: make(map[int]int),
	}

	summary.TotalRecords = len(records)
	for _, r := range records {
		summary.ByKind[r.Kind]++
		switch r.Kind {
		case GateClosed, GateOpened:
			summary.Actuations++
		case GateCloseFailed, GateOpenFailed:
			summary.Actuations++
			summary.Failures++
		}
		if r.HasGate() {
			summary.PerGateActions[r.GateID]++
		}
	}

	summary.GatesTouched = len(summary.PerGateActions)

	return summary
}
