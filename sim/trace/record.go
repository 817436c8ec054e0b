// Package trace provides the append-only action log of a flood simulation run.
// This package has no dependencies on sim/ or sim/process/: it stores pure data types.
package trace

import "fmt"

// ActionKind enumerates the state-changing events recorded in an ActionLog.
type ActionKind string

const (
	GateClosed           ActionKind = "gate_closed"
	GateOpened           ActionKind = "gate_opened"
	GateCloseFailed      ActionKind = "gate_close_failed"
	GateOpenFailed       ActionKind = "gate_open_failed"
	MaintenanceStarted   ActionKind = "maintenance_started"
	MaintenanceCompleted ActionKind = "maintenance_completed"
	// SafeLevel is a depth-only observation: the controller found no gate needing
	// closure. It carries no gate ID.
	SafeLevel ActionKind = "safe_level"
)

// AllKinds lists every ActionKind in a stable order.
var AllKinds = []ActionKind{
	GateClosed, GateOpened, GateCloseFailed, GateOpenFailed,
	MaintenanceStarted, MaintenanceCompleted, SafeLevel,
}

// IsFailure reports whether k records a failed actuation.
func (k ActionKind) IsFailure() bool {
	return k == GateCloseFailed || k == GateOpenFailed
}

// NoGate is the GateID of depth-only records.
const NoGate = 0

// ActionRecord captures a single state-changing event. Records are never mutated
// after being appended.
type ActionRecord struct {
	Time   int64      `json:"time"`
	Depth  float64    `json:"depth"`
	Kind   ActionKind `json:"kind"`
	GateID int        `json:"gate_id,omitempty"` // NoGate for depth-only records
}

// HasGate reports whether the record refers to a gate.
func (r ActionRecord) HasGate() bool {
	return r.GateID != NoGate
}

func (r ActionRecord) String() string {
	if !r.HasGate() {
		return fmt.Sprintf("t=%d depth=%.2f %s", r.Time, r.Depth, r.Kind)
	}
	return fmt.Sprintf("t=%d depth=%.2f %s gate=%d", r.Time, r.Depth, r.Kind, r.GateID)
}
