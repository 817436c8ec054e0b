package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy names accepted by Config.Policy and NewEvaluationPolicy.
const (
	PolicyPerGateThreshold = "per-gate-threshold"
	PolicyUniformThreshold = "uniform-threshold"
)

// Defaults matching the two configurations the controller was first deployed with.
const (
	DefaultNumGates            = 19
	DefaultBaseThreshold       = 2.5  // meters, threshold of gate 1 under per-gate-threshold
	DefaultThresholdStep       = 0.05 // meters added per gate id
	DefaultUniformThreshold    = 2.7  // meters
	DefaultSuccessProbability  = 0.9
	DefaultReadInterval        = 5 // ticks
	DefaultNumCycles           = 10
	DefaultMaintenanceDuration = 5 // ticks
	DefaultSeed                = 42
)

// DepthConfig groups the parameters of the default uniform depth source.
type DepthConfig struct {
	Min       float64 `yaml:"min"`       // meters, inclusive
	Max       float64 `yaml:"max"`       // meters
	Precision int     `yaml:"precision"` // decimal places readings are rounded to
}

// Config is the full configuration of one simulation run, loadable from YAML.
type Config struct {
	NumGates int `yaml:"num_gates"`
	// ClosureThresholds holds one threshold per gate under per-gate-threshold, or at
	// most one global threshold under uniform-threshold. Empty selects the defaults.
	ClosureThresholds   []float64   `yaml:"closure_thresholds,omitempty"`
	SuccessProbability  float64     `yaml:"success_probability"`
	ReadInterval        int64       `yaml:"read_interval"` // ticks between depth readings
	NumCycles           int         `yaml:"num_cycles"`
	MaintenanceDuration int64       `yaml:"maintenance_duration"` // ticks
	Policy              string      `yaml:"policy"`
	Seed                int64       `yaml:"seed"`
	Depth               DepthConfig `yaml:"depth"`
	// InitialDepth, when set, is used for the first tick instead of a reading.
	InitialDepth *float64 `yaml:"initial_depth,omitempty"`

	// DepthSource replaces the uniform depth source (scripted sequences in tests).
	DepthSource DepthSource `yaml:"-"`
	// SuccessDraws replaces every gate's seeded success stream.
	SuccessDraws Drawer `yaml:"-"`
}

// DefaultConfig returns the per-gate-threshold configuration: 19 gates with
// progressive thresholds 2.5 + 0.05·(id-1).
func DefaultConfig() Config {
	return Config{
		NumGates:            DefaultNumGates,
		SuccessProbability:  DefaultSuccessProbability,
		ReadInterval:        DefaultReadInterval,
		NumCycles:           DefaultNumCycles,
		MaintenanceDuration: DefaultMaintenanceDuration,
		Policy:              PolicyPerGateThreshold,
		Seed:                DefaultSeed,
		Depth: DepthConfig{
			Min:       2.5,
			Max:       3.0,
			Precision: 2,
		},
	}
}

// DefaultUniformConfig returns DefaultConfig switched to a single global threshold
// of 2.7m.
func DefaultUniformConfig() Config {
	cfg := DefaultConfig()
	cfg.Policy = PolicyUniformThreshold
	return cfg
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Unknown keys are rejected so typos fail loudly.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field. It returns a *ConfigError describing the first
// problem found.
func (c *Config) Validate() error {
	if c.NumGates < 1 {
		return configErrorf("num_gates", "must be at least 1, got %d", c.NumGates)
	}
	if !IsValidPolicy(c.Policy) {
		return configErrorf("policy", "unknown policy %q", c.Policy)
	}
	switch c.policyName() {
	case PolicyPerGateThreshold:
		if n := len(c.ClosureThresholds); n != 0 && n != c.NumGates {
			return configErrorf("closure_thresholds", "has %d entries, want %d (one per gate)", n, c.NumGates)
		}
	case PolicyUniformThreshold:
		if n := len(c.ClosureThresholds); n > 1 {
			return configErrorf("closure_thresholds", "has %d entries, want at most 1 under %s", n, PolicyUniformThreshold)
		}
	}
	for i, th := range c.ClosureThresholds {
		if math.IsNaN(th) || math.IsInf(th, 0) {
			return configErrorf("closure_thresholds", "entry %d is not a finite number", i)
		}
	}
	if math.IsNaN(c.SuccessProbability) || c.SuccessProbability < 0 || c.SuccessProbability > 1 {
		return configErrorf("success_probability", "must be within [0, 1], got %v", c.SuccessProbability)
	}
	if c.ReadInterval <= 0 {
		return configErrorf("read_interval", "must be positive, got %d", c.ReadInterval)
	}
	if c.NumCycles <= 0 {
		return configErrorf("num_cycles", "must be positive, got %d", c.NumCycles)
	}
	if c.MaintenanceDuration <= 0 {
		return configErrorf("maintenance_duration", "must be positive, got %d", c.MaintenanceDuration)
	}
	if c.DepthSource == nil {
		if c.Depth.Min > c.Depth.Max {
			return configErrorf("depth", "min %v exceeds max %v", c.Depth.Min, c.Depth.Max)
		}
		if c.Depth.Min < 0 {
			return configErrorf("depth.min", "must be non-negative, got %v", c.Depth.Min)
		}
		if c.Depth.Precision < 0 || c.Depth.Precision > 10 {
			return configErrorf("depth.precision", "must be within [0, 10], got %d", c.Depth.Precision)
		}
	}
	if c.InitialDepth != nil {
		if d := *c.InitialDepth; math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return configErrorf("initial_depth", "must be a non-negative finite number, got %v", d)
		}
	}
	return nil
}

// Thresholds resolves the closure threshold of every gate, index i holding gate i+1.
// Call after Validate.
func (c *Config) Thresholds() []float64 {
	out := make([]float64, c.NumGates)
	switch c.policyName() {
	case PolicyUniformThreshold:
		th := DefaultUniformThreshold
		if len(c.ClosureThresholds) == 1 {
			th = c.ClosureThresholds[0]
		}
		for i := range out {
			out[i] = th
		}
	default:
		if len(c.ClosureThresholds) == c.NumGates {
			copy(out, c.ClosureThresholds)
			break
		}
		for i := range out {
			out[i] = roundTo(DefaultBaseThreshold+float64(i)*DefaultThresholdStep, 2)
		}
	}
	return out
}

// UniformThreshold returns the global threshold used by uniform-threshold.
func (c *Config) UniformThreshold() float64 {
	if len(c.ClosureThresholds) == 1 {
		return c.ClosureThresholds[0]
	}
	return DefaultUniformThreshold
}

// policyName resolves the empty policy name to the default.
func (c *Config) policyName() string {
	if c.Policy == "" {
		return PolicyPerGateThreshold
	}
	return c.Policy
}
