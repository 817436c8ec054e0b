package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// Controller is the central station: it receives depth readings and sends
// open/close commands to the gates according to its policy.
type Controller struct {
	gates  []*Gate // ascending id
	policy EvaluationPolicy
	log    *trace.ActionLog
}

// NewController creates a controller over gates, which it evaluates in ascending
// id order regardless of the order given.
func NewController(gates []*Gate, policy EvaluationPolicy, log *trace.ActionLog) *Controller {
	sorted := append([]*Gate(nil), gates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })
	return &Controller{gates: sorted, policy: policy, log: log}
}

// Policy returns the evaluation policy.
func (c *Controller) Policy() EvaluationPolicy { return c.policy }

// Evaluate runs inside process p and returns once every action this reading calls
// for has resolved. Gates are handled one at a time: a gate's actuation, including
// any maintenance it triggers, completes before the next gate is evaluated.
func (c *Controller) Evaluate(p *process.Process, reading DepthReading) {
	depth := reading.Meters
	logrus.Debugf("[tick %07d] Depth %.2f (reading #%d)", p.Now(), depth, reading.Tick)

	if c.policy.SafeLevel(depth) {
		c.log.Append(trace.ActionRecord{Time: p.Now(), Depth: depth, Kind: trace.SafeLevel})
		logrus.Debugf("[tick %07d] Depth %.2f below threshold, no action", p.Now(), depth)
		return
	}

	for _, g := range c.gates {
		action, ok := c.policy.Decide(depth, g)
		if !ok {
			continue
		}
		logrus.Infof("[tick %07d] Sending %s command to gate %d", p.Now(), action, g.ID())
		p.Call(fmt.Sprintf("actuate-gate-%d", g.ID()), func(gp *process.Process) {
			g.Actuate(gp, action, depth)
		})
	}
}
