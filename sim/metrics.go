package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "floodgate"
	metricsSubsystem = "sim"
)

// Metrics holds the Prometheus collectors of one simulation run, on a registry of
// its own.
//
// All methods are safe on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	actuations  *prometheus.CounterVec // labels: action, outcome
	maintenance prometheus.Counter
	closedGates prometheus.Gauge
	riverDepth  prometheus.Gauge
	clock       prometheus.Gauge
	ticks       prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		actuations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "gate_actuations_total",
				Help:      "Gate actuations by requested action and outcome",
			},
			[]string{"action", "outcome"},
		),
		maintenance: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "maintenance_total",
			Help:      "Maintenance repairs started",
		}),
		closedGates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "closed_gates",
			Help:      "Gates currently in the closed position",
		}),
		riverDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "river_depth_meters",
			Help:      "Most recent river depth reading",
		}),
		clock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "virtual_time_ticks",
			Help:      "Virtual time of the most recent depth reading",
		}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "ticks_total",
			Help:      "Driver iterations executed",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeTick(now int64, depth float64) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.clock.Set(float64(now))
	m.riverDepth.Set(depth)
}

func (m *Metrics) observeActuation(action Action, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.actuations.WithLabelValues(action.String(), outcome).Inc()
}

func (m *Metrics) observeMaintenance() {
	if m == nil {
		return
	}
	m.maintenance.Inc()
}

func (m *Metrics) observePositionChange(from, to Position) {
	if m == nil {
		return
	}
	if to == PositionClosed {
		m.closedGates.Inc()
	}
	if from == PositionClosed {
		m.closedGates.Dec()
	}
}
