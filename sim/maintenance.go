package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// Maintenance models the repair crew. A repair takes a fixed duration and always
// leaves the gate open, whichever action originally failed.
type Maintenance struct {
	duration int64
	log      *trace.ActionLog
	metrics  *Metrics
}

// NewMaintenance creates a crew whose repairs take duration ticks.
func NewMaintenance(duration int64, log *trace.ActionLog, metrics *Metrics) *Maintenance {
	return &Maintenance{duration: duration, log: log, metrics: metrics}
}

// Duration returns the repair duration in ticks.
func (m *Maintenance) Duration() int64 { return m.duration }

// Repair runs inside process p and returns once g is operable again.
func (m *Maintenance) Repair(p *process.Process, g *Gate, depth float64) {
	logrus.Infof("[tick %07d] Starting maintenance of gate %d", p.Now(), g.ID())
	m.metrics.observeMaintenance()
	m.log.Append(trace.ActionRecord{Time: p.Now(), Depth: depth, Kind: trace.MaintenanceStarted, GateID: g.ID()})
	g.inMaintenance = true

	p.Delay(m.duration)

	m.log.Append(trace.ActionRecord{Time: p.Now(), Depth: depth, Kind: trace.MaintenanceCompleted, GateID: g.ID()})
	g.reset()
	g.inMaintenance = false
	logrus.Infof("[tick %07d] Maintenance of gate %d completed, gate operating normally", p.Now(), g.ID())
}
