package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// constDraws always returns the same draw.
type constDraws float64

func (c constDraws) Float64() float64 { return float64(c) }

// seqDraws replays a fixed sequence of draws, then repeats the last one.
type seqDraws struct {
	values []float64
	next   int
}

func (s *seqDraws) Float64() float64 {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

// gateFixture is a set of gates sharing one log and maintenance crew, outside of a
// Simulator.
type gateFixture struct {
	log     *trace.ActionLog
	metrics *Metrics
	gates   []*Gate
}

func newGateFixture(successProb float64, draws Drawer, thresholds ...float64) *gateFixture {
	f := &gateFixture{log: trace.NewActionLog(), metrics: NewMetrics()}
	m := NewMaintenance(DefaultMaintenanceDuration, f.log, f.metrics)
	for i, th := range thresholds {
		f.gates = append(f.gates, NewGate(GateConfig{ID: i + 1, ClosureThreshold: th}, successProb, draws, m, f.log, f.metrics))
	}
	return f
}

// runProcess runs fn as the root process of a fresh Environment and returns the
// virtual time at which the loop went idle.
func runProcess(t *testing.T, fn process.Func) int64 {
	t.Helper()
	env := process.NewEnvironment()
	var root *process.Process
	err := env.Run(context.Background(), "test-root", func(p *process.Process) {
		root = p
		fn(p)
	})
	require.NoError(t, err)
	require.NotNil(t, root)
	require.NoError(t, root.Err())
	return env.Now()
}

// kinds returns the kinds of records, in order.
func kinds(records []trace.ActionRecord) []trace.ActionKind {
	out := make([]trace.ActionKind, len(records))
	for i, r := range records {
		out[i] = r.Kind
	}
	return out
}

func newTestSimulator(t *testing.T, cfg Config) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	return s
}

func runSimulator(t *testing.T, cfg Config) (*Simulator, *SimulationResult) {
	t.Helper()
	s := newTestSimulator(t, cfg)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	return s, res
}
