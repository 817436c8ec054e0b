package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

func TestGate_StartsOpen(t *testing.T) {
	f := newGateFixture(1, constDraws(0), 2.5)
	g := f.gates[0]

	assert.Equal(t, PositionOpen, g.Position())
	assert.False(t, g.InMaintenance())
	assert.Equal(t, 0, g.Actuations())
	assert.Equal(t, GateConfig{ID: 1, ClosureThreshold: 2.5}, g.Config())
}

func TestGate_Actuate_SuccessfulClose(t *testing.T) {
	// GIVEN a gate that always succeeds
	f := newGateFixture(1, constDraws(0.5), 2.5)
	g := f.gates[0]

	// WHEN it is told to close at depth 2.6
	end := runProcess(t, func(p *process.Process) {
		g.Actuate(p, ActionClose, 2.6)
	})

	// THEN it is closed, one GateClosed record exists, and no time passed
	assert.Equal(t, PositionClosed, g.Position())
	records := f.log.Records()
	require.Len(t, records, 1)
	assert.Equal(t, trace.ActionRecord{Time: 0, Depth: 2.6, Kind: trace.GateClosed, GateID: 1}, records[0])
	assert.Equal(t, int64(0), end)
	assert.Equal(t, 1, g.Actuations())
	assert.Equal(t, 0, g.Failures())
}

func TestGate_Actuate_SuccessfulOpenAfterClose(t *testing.T) {
	f := newGateFixture(1, constDraws(0.5), 2.5)
	g := f.gates[0]

	runProcess(t, func(p *process.Process) {
		g.Actuate(p, ActionClose, 2.6)
		g.Actuate(p, ActionOpen, 2.4)
	})

	assert.Equal(t, PositionOpen, g.Position())
	assert.Equal(t, []trace.ActionKind{trace.GateClosed, trace.GateOpened}, kinds(f.log.Records()))
}

func TestGate_Actuate_FailedCloseRunsMaintenanceAndLeavesGateOpen(t *testing.T) {
	// GIVEN a gate that always fails
	f := newGateFixture(0, constDraws(0.5), 2.5)
	g := f.gates[0]

	// WHEN it is told to close
	end := runProcess(t, func(p *process.Process) {
		g.Actuate(p, ActionClose, 2.9)
	})

	// THEN failure, maintenance start and completion are recorded in order
	records := f.log.Records()
	require.Equal(t, []trace.ActionKind{
		trace.GateCloseFailed, trace.MaintenanceStarted, trace.MaintenanceCompleted,
	}, kinds(records))
	// AND the repair took the maintenance duration
	assert.Equal(t, int64(0), records[0].Time)
	assert.Equal(t, int64(0), records[1].Time)
	assert.Equal(t, int64(DefaultMaintenanceDuration), records[2].Time)
	assert.Equal(t, int64(DefaultMaintenanceDuration), end)
	// AND the gate is back to open and operable
	assert.Equal(t, PositionOpen, g.Position())
	assert.False(t, g.InMaintenance())
	assert.Equal(t, 1, g.Failures())
}

func TestGate_Actuate_FailedOpenResolvesToOpen(t *testing.T) {
	// GIVEN a closed gate whose next draw fails
	draws := &seqDraws{values: []float64{0.1, 0.95}}
	f := newGateFixture(0.9, draws, 2.5)
	g := f.gates[0]

	runProcess(t, func(p *process.Process) {
		g.Actuate(p, ActionClose, 2.6)
		assert.Equal(t, PositionClosed, g.Position())

		// WHEN opening fails
		g.Actuate(p, ActionOpen, 2.4)
	})

	// THEN maintenance resets it to open anyway
	assert.Equal(t, PositionOpen, g.Position())
	assert.Equal(t, []trace.ActionKind{
		trace.GateClosed, trace.GateOpenFailed, trace.MaintenanceStarted, trace.MaintenanceCompleted,
	}, kinds(f.log.Records()))
}

func TestGate_Actuate_InMaintenanceDuringRepair(t *testing.T) {
	f := newGateFixture(0, constDraws(0.5), 2.5)
	g := f.gates[0]
	var during bool

	runProcess(t, func(p *process.Process) {
		child := p.Spawn("actuate", func(ap *process.Process) {
			g.Actuate(ap, ActionClose, 2.9)
		})
		p.Delay(1)
		during = g.InMaintenance()
		p.Await(child)
	})

	assert.True(t, during, "gate must report maintenance while the repair is delayed")
	assert.False(t, g.InMaintenance())
}

func TestGate_Actuate_TowardsCurrentPositionRecordsWithoutChange(t *testing.T) {
	f := newGateFixture(1, constDraws(0), 2.5)
	g := f.gates[0]

	runProcess(t, func(p *process.Process) {
		g.Actuate(p, ActionOpen, 2.4)
	})

	assert.Equal(t, PositionOpen, g.Position())
	assert.Equal(t, []trace.ActionKind{trace.GateOpened}, kinds(f.log.Records()))
}

func TestGate_Actuate_YieldsToProcessesQueuedAtSameTime(t *testing.T) {
	f := newGateFixture(1, constDraws(0), 2.5)
	g := f.gates[0]
	var order []string

	runProcess(t, func(p *process.Process) {
		a := p.Spawn("actuate", func(ap *process.Process) {
			g.Actuate(ap, ActionClose, 2.6)
			order = append(order, "actuate-done")
		})
		b := p.Spawn("other", func(*process.Process) {
			order = append(order, "other")
		})
		p.Await(a)
		p.Await(b)
	})

	assert.Equal(t, []string{"other", "actuate-done"}, order)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "open", ActionOpen.String())
	assert.Equal(t, "close", ActionClose.String())
	assert.Equal(t, "action(7)", Action(7).String())
}
