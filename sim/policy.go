package sim

import "fmt"

// EvaluationPolicy decides, for one depth reading, which action each gate needs.
// Decide sees the gate's current state and must not mutate it.
type EvaluationPolicy interface {
	Name() string
	// Decide returns the action gate g needs at depth, or false for none.
	Decide(depth float64, g *Gate) (Action, bool)
	// SafeLevel reports whether depth should be recorded as a safe-level
	// observation, in which case Decide yields no action for any gate.
	SafeLevel(depth float64) bool
}

// PerGateThreshold closes each open gate whose own threshold is reached and reopens
// each closed gate once the depth falls below its threshold.
type PerGateThreshold struct{}

func (PerGateThreshold) Name() string { return PolicyPerGateThreshold }

func (PerGateThreshold) Decide(depth float64, g *Gate) (Action, bool) {
	switch {
	case depth >= g.Threshold() && g.Position() == PositionOpen:
		return ActionClose, true
	case depth < g.Threshold() && g.Position() == PositionClosed:
		return ActionOpen, true
	default:
		return 0, false
	}
}

// SafeLevel is always false: per-gate evaluation records nothing when no gate
// needs an action.
func (PerGateThreshold) SafeLevel(float64) bool { return false }

// UniformThreshold closes every gate once a single global threshold is reached.
// It never reopens gates.
type UniformThreshold struct {
	Threshold float64
}

func (u *UniformThreshold) Name() string { return PolicyUniformThreshold }

func (u *UniformThreshold) Decide(depth float64, g *Gate) (Action, bool) {
	if depth >= u.Threshold && g.Position() != PositionClosed {
		return ActionClose, true
	}
	return 0, false
}

func (u *UniformThreshold) SafeLevel(depth float64) bool {
	return depth < u.Threshold
}

// ValidPolicies is the set of recognized evaluation policy names.
// Shared by Config.Validate() and NewEvaluationPolicy() to avoid duplication.
var ValidPolicies = map[string]bool{"": true, PolicyPerGateThreshold: true, PolicyUniformThreshold: true}

// IsValidPolicy returns true if name is a recognized evaluation policy.
func IsValidPolicy(name string) bool {
	return ValidPolicies[name]
}

// NewEvaluationPolicy creates an evaluation policy by name.
// An empty string defaults to per-gate-threshold.
// uniformThreshold is only used by uniform-threshold.
// Panics on unrecognized names.
func NewEvaluationPolicy(name string, uniformThreshold float64) EvaluationPolicy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown evaluation policy %q", name))
	}
	switch name {
	case "", PolicyPerGateThreshold:
		return PerGateThreshold{}
	case PolicyUniformThreshold:
		return &UniformThreshold{Threshold: uniformThreshold}
	default:
		panic(fmt.Sprintf("unhandled evaluation policy %q", name))
	}
}
