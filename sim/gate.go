package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// Action is a command the controller sends to a gate.
type Action int

const (
	ActionOpen Action = iota
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionClose:
		return "close"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Position is the physical position of a gate. The values double as the states of
// the gate's state machine.
type Position string

const (
	PositionOpen   Position = "open"
	PositionClosed Position = "closed"
)

// Gate state machine events.
const (
	gateEventOpen  = "open"
	gateEventClose = "close"
	gateEventReset = "reset"
)

// Drawer is a source of uniform draws in [0, 1). *rand.Rand satisfies it.
type Drawer interface {
	Float64() float64
}

// GateConfig is the immutable configuration of one gate.
type GateConfig struct {
	ID               int     // 1..N, unique
	ClosureThreshold float64 // meters; the gate must be closed at or above this depth
}

// Gate is one floodgate: its position machine, its success stream, and the
// maintenance crew it escalates to. Only the gate's own actuation and maintenance
// processes mutate it.
type Gate struct {
	cfg         GateConfig
	machine     *fsm.FSM
	draws       Drawer
	successProb float64
	maintenance *Maintenance
	log         *trace.ActionLog
	metrics     *Metrics

	busy          bool // an actuation is outstanding
	inMaintenance bool
	actuations    int
	failures      int
}

// NewGate creates an open gate.
func NewGate(cfg GateConfig, successProb float64, draws Drawer, maintenance *Maintenance, log *trace.ActionLog, metrics *Metrics) *Gate {
	g := &Gate{
		cfg:         cfg,
		draws:       draws,
		successProb: successProb,
		maintenance: maintenance,
		log:         log,
		metrics:     metrics,
	}
	both := []string{string(PositionOpen), string(PositionClosed)}
	g.machine = fsm.NewFSM(
		string(PositionOpen),
		fsm.Events{
			{Name: gateEventClose, Src: both, Dst: string(PositionClosed)},
			{Name: gateEventOpen, Src: both, Dst: string(PositionOpen)},
			{Name: gateEventReset, Src: both, Dst: string(PositionOpen)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logrus.Debugf("Gate %d position %s -> %s (%s)", g.cfg.ID, e.Src, e.Dst, e.Event)
				g.metrics.observePositionChange(Position(e.Src), Position(e.Dst))
			},
		},
	)
	return g
}

// ID returns the gate id.
func (g *Gate) ID() int { return g.cfg.ID }

// Threshold returns the closure threshold in meters.
func (g *Gate) Threshold() float64 { return g.cfg.ClosureThreshold }

// Config returns the gate's configuration.
func (g *Gate) Config() GateConfig { return g.cfg }

// Position returns the current position.
func (g *Gate) Position() Position { return Position(g.machine.Current()) }

// InMaintenance reports whether a repair is in progress.
func (g *Gate) InMaintenance() bool { return g.inMaintenance }

// Actuations returns how many actuations were attempted on the gate.
func (g *Gate) Actuations() int { return g.actuations }

// Failures returns how many actuations failed.
func (g *Gate) Failures() int { return g.failures }

// Actuate executes one action from within process p and returns once it resolved.
// A failed action leaves the position untouched and awaits a maintenance repair,
// which reopens the gate. Actuate always yields at least once.
//
// The gate does not deduplicate: actuating towards the current position records a
// success without changing state.
func (g *Gate) Actuate(p *process.Process, action Action, depth float64) {
	if g.busy {
		panic(fmt.Sprintf("gate %d already has an outstanding action", g.cfg.ID))
	}
	g.busy = true
	defer func() { g.busy = false }()

	g.actuations++
	success := g.draws.Float64() < g.successProb
	g.metrics.observeActuation(action, success)

	if success {
		g.transition(actionEvent(action))
		g.record(p, depth, successKind(action))
		logrus.Debugf("[tick %07d] Gate %d %s successfully", p.Now(), g.cfg.ID, pastTense(action))
	} else {
		g.failures++
		g.record(p, depth, failureKind(action))
		logrus.Warnf("[tick %07d] Gate %d failed to %s, notifying maintenance", p.Now(), g.cfg.ID, action)
		p.Call(fmt.Sprintf("maintenance-gate-%d", g.cfg.ID), func(mp *process.Process) {
			g.maintenance.Repair(mp, g, depth)
		})
	}
	p.Yield()
}

// reset returns the gate to the open position after a repair.
func (g *Gate) reset() {
	g.transition(gateEventReset)
}

func (g *Gate) transition(event string) {
	err := g.machine.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return
	}
	// Every event is allowed from every state; anything else is a wiring bug.
	panic(fmt.Sprintf("gate %d: %s: %v", g.cfg.ID, event, err))
}

func (g *Gate) record(p *process.Process, depth float64, kind trace.ActionKind) {
	g.log.Append(trace.ActionRecord{Time: p.Now(), Depth: depth, Kind: kind, GateID: g.cfg.ID})
}

func actionEvent(a Action) string {
	if a == ActionClose {
		return gateEventClose
	}
	return gateEventOpen
}

func successKind(a Action) trace.ActionKind {
	if a == ActionClose {
		return trace.GateClosed
	}
	return trace.GateOpened
}

func failureKind(a Action) trace.ActionKind {
	if a == ActionClose {
		return trace.GateCloseFailed
	}
	return trace.GateOpenFailed
}

func pastTense(a Action) string {
	if a == ActionClose {
		return "closed"
	}
	return "opened"
}
