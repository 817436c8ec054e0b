// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floodgate-sim/floodgate-sim/sim/process"
	"github.com/floodgate-sim/floodgate-sim/sim/trace"
)

// Simulator is the core object that owns one run: the event loop, the gates, the
// controller and the action log. A Simulator runs once.
type Simulator struct {
	cfg        Config
	env        *process.Environment
	rng        *PartitionedRNG
	depth      DepthSource
	gates      []*Gate
	controller *Controller
	log        *trace.ActionLog
	metrics    *Metrics

	observations []Observation
}

// NewSimulator validates cfg and wires every component of a run. It returns a
// *ConfigError before any simulation activity if cfg is invalid.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:     cfg,
		env:     process.NewEnvironment(),
		rng:     NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		log:     trace.NewActionLog(),
		metrics: NewMetrics(),
	}

	s.depth = cfg.DepthSource
	if s.depth == nil {
		s.depth = NewUniformDepthSource(s.rng.ForSubsystem(SubsystemDepth), cfg.Depth)
	}

	maintenance := NewMaintenance(cfg.MaintenanceDuration, s.log, s.metrics)
	thresholds := cfg.Thresholds()
	s.gates = make([]*Gate, len(thresholds))
	for i, th := range thresholds {
		id := i + 1
		var draws Drawer = cfg.SuccessDraws
		if draws == nil {
			draws = s.rng.ForSubsystem(SubsystemGate(id))
		}
		s.gates[i] = NewGate(GateConfig{ID: id, ClosureThreshold: th}, cfg.SuccessProbability, draws, maintenance, s.log, s.metrics)
	}

	policy := NewEvaluationPolicy(cfg.Policy, cfg.UniformThreshold())
	s.controller = NewController(s.gates, policy, s.log)

	logrus.Infof("Simulator ready: %d gates, policy %s, p=%.2f, interval %d, %d cycles, seed %d",
		len(s.gates), policy.Name(), cfg.SuccessProbability, cfg.ReadInterval, cfg.NumCycles, cfg.Seed)
	logrus.Infof("Closure thresholds:\n%s", thresholdTable(s.gates))
	return s, nil
}

// Run executes NumCycles ticks and returns the result. Cancelling ctx stops the run
// between events and returns the context error along with the partial result.
// Calling Run a second time returns process.ErrInvalidSchedule.
func (s *Simulator) Run(ctx context.Context) (*SimulationResult, error) {
	err := s.env.Run(ctx, "driver", s.drive)
	s.env.Close()
	if errors.Is(err, process.ErrInvalidSchedule) {
		return nil, fmt.Errorf("simulation run: %w", err)
	}
	if err != nil {
		return s.result(), fmt.Errorf("simulation run: %w", err)
	}

	res := s.result()
	logrus.Infof("[tick %07d] Simulation complete: %d observations, %d action records",
		res.EndTime, len(res.Observations), len(res.Actions))
	return res, nil
}

// drive is the body of the driver process.
func (s *Simulator) drive(p *process.Process) {
	for tick := 0; tick < s.cfg.NumCycles; tick++ {
		depth := s.readDepth(tick)
		s.observations = append(s.observations, Observation{Tick: tick, Time: p.Now(), Depth: depth})
		s.metrics.observeTick(p.Now(), depth)
		logrus.Infof("[tick %07d] Execution #%d, depth %.2f", p.Now(), tick+1, depth)

		reading := DepthReading{Tick: tick, Meters: depth}
		p.Call(fmt.Sprintf("controller-%d", tick), func(cp *process.Process) {
			s.controller.Evaluate(cp, reading)
		})
		p.Delay(s.cfg.ReadInterval)
	}
}

func (s *Simulator) readDepth(tick int) float64 {
	if tick == 0 && s.cfg.InitialDepth != nil {
		return *s.cfg.InitialDepth
	}
	return s.depth.Read()
}

func (s *Simulator) result() *SimulationResult {
	gates := make([]GateSnapshot, len(s.gates))
	for i, g := range s.gates {
		gates[i] = GateSnapshot{
			ID:         g.ID(),
			Threshold:  g.Threshold(),
			Position:   g.Position(),
			Actuations: g.Actuations(),
			Failures:   g.Failures(),
		}
	}
	return &SimulationResult{
		RunID:        uuid.NewString(),
		Policy:       s.controller.Policy().Name(),
		Seed:         s.cfg.Seed,
		EndTime:      s.env.Now(),
		Observations: append([]Observation(nil), s.observations...),
		Actions:      s.log.Records(),
		Gates:        gates,
	}
}

// Gates returns the gates in ascending id order.
func (s *Simulator) Gates() []*Gate { return s.gates }

// Log returns the action log.
func (s *Simulator) Log() *trace.ActionLog { return s.log }

// Metrics returns the run's Prometheus collectors.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// Environment returns the event loop the run executes on.
func (s *Simulator) Environment() *process.Environment { return s.env }

// Config returns the validated configuration.
func (s *Simulator) Config() Config { return s.cfg }

func thresholdTable(gates []*Gate) string {
	var b strings.Builder
	b.WriteString("  gate | threshold (m)\n")
	for _, g := range gates {
		fmt.Fprintf(&b, "  %4d | %.2f\n", g.ID(), g.Threshold())
	}
	return strings.TrimRight(b.String(), "\n")
}
