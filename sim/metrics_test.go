package sim

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.observeTick(5, 2.6)
		m.observeActuation(ActionClose, true)
		m.observeMaintenance()
		m.observePositionChange(PositionOpen, PositionClosed)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_ClosedGatesTracksTransitions(t *testing.T) {
	m := NewMetrics()

	m.observePositionChange(PositionOpen, PositionClosed)
	m.observePositionChange(PositionOpen, PositionClosed)
	m.observePositionChange(PositionClosed, PositionOpen)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.closedGates))
}

func TestMetrics_FollowSimulationRun(t *testing.T) {
	// GIVEN a uniform run that closes 3 gates at the second reading
	cfg := DefaultUniformConfig()
	cfg.NumGates = 3
	cfg.SuccessProbability = 1
	cfg.NumCycles = 3
	cfg.DepthSource = NewScriptedDepthSource(2.6, 2.8, 2.5)

	// WHEN it runs
	sim, _ := runSimulator(t, cfg)
	m := sim.Metrics()

	// THEN the collectors reflect the run
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.clock))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.riverDepth))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.closedGates))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.actuations.WithLabelValues("close", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.maintenance))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "floodgate_sim_ticks_total")
	assert.Contains(t, names, "floodgate_sim_gate_actuations_total")
}

func TestMetrics_CountsFailuresAndMaintenance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumGates = 2
	cfg.SuccessProbability = 0
	cfg.NumCycles = 2
	cfg.DepthSource = NewScriptedDepthSource(3.0)

	sim, _ := runSimulator(t, cfg)
	m := sim.Metrics()

	assert.Equal(t, 4.0, testutil.ToFloat64(m.actuations.WithLabelValues("close", "failure")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.maintenance))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.closedGates))
}
