package sim

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// Observation is the (time, depth) pair the driver records at the start of each tick.
type Observation struct {
	Tick  int     `json:"tick"`
	Time  int64   `json:"time"`
	Depth float64 `json:"depth"`
}

// GateSnapshot is the final state of one gate.
type GateSnapshot struct {
	ID         int      `json:"id"`
	Threshold  float64  `json:"threshold"`
	Position   Position `json:"position"`
	Actuations int      `json:"actuations"`
	Failures   int      `json:"failures"`
}

// SimulationResult is everything a run produced, handed to external reporting.
type SimulationResult struct {
	RunID        string               `json:"run_id"`
	Policy       string               `json:"policy"`
	Seed         int64                `json:"seed"`
	EndTime      int64                `json:"end_time"`
	Observations []Observation        `json:"observations"`
	Actions      []trace.ActionRecord `json:"actions"`
	Gates        []GateSnapshot       `json:"gates"`
}

// ResultSummary aggregates a SimulationResult.
type ResultSummary struct {
	Ticks       int
	EndTime     int64
	MeanDepth   float64
	DepthStdDev float64
	MinDepth    float64
	MaxDepth    float64
	ClosedGates int
	Log         *trace.LogSummary
}

// Summary computes aggregate statistics. Safe on a result with no observations.
func (r *SimulationResult) Summary() ResultSummary {
	s := ResultSummary{
		Ticks:   len(r.Observations),
		EndTime: r.EndTime,
		Log:     trace.Summarize(r.Actions),
	}
	for _, g := range r.Gates {
		if g.Position == PositionClosed {
			s.ClosedGates++
		}
	}
	if len(r.Observations) == 0 {
		return s
	}

	depths := make([]float64, len(r.Observations))
	for i, o := range r.Observations {
		depths[i] = o.Depth
	}
	s.MeanDepth = stat.Mean(depths, nil)
	if len(depths) > 1 {
		s.DepthStdDev = stat.StdDev(depths, nil)
	}
	s.MinDepth = floats.Min(depths)
	s.MaxDepth = floats.Max(depths)
	return s
}

// Print writes a human-readable summary to w.
func (s ResultSummary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Ticks                : %d\n", s.Ticks)
	fmt.Fprintf(w, "End Time             : %d ticks\n", s.EndTime)
	if s.Ticks > 0 {
		fmt.Fprintf(w, "Depth (mean ± sd)    : %.3f ± %.3f m\n", s.MeanDepth, s.DepthStdDev)
		fmt.Fprintf(w, "Depth (min / max)    : %.2f / %.2f m\n", s.MinDepth, s.MaxDepth)
	}
	fmt.Fprintf(w, "Actuations           : %d (%d failed)\n", s.Log.Actuations, s.Log.Failures)
	fmt.Fprintf(w, "Maintenance Runs     : %d\n", s.Log.ByKind[trace.MaintenanceStarted])
	fmt.Fprintf(w, "Safe-Level Readings  : %d\n", s.Log.ByKind[trace.SafeLevel])
	fmt.Fprintf(w, "Closed Gates At End  : %d\n", s.ClosedGates)
}
