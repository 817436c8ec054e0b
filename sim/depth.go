package sim

import (
	"math"
	"math/rand"
)

// DepthReading is one river depth sample and the tick it was taken at.
type DepthReading struct {
	Tick   int
	Meters float64
}

// DepthSource produces river depth readings on demand.
type DepthSource interface {
	Read() float64
}

// UniformDepthSource draws depths uniformly from [min, max], rounded to a fixed
// number of decimal places.
type UniformDepthSource struct {
	rng       *rand.Rand
	min, max  float64
	precision int
}

// NewUniformDepthSource creates a UniformDepthSource drawing from rng.
func NewUniformDepthSource(rng *rand.Rand, cfg DepthConfig) *UniformDepthSource {
	return &UniformDepthSource{
		rng:       rng,
		min:       cfg.Min,
		max:       cfg.Max,
		precision: cfg.Precision,
	}
}

// Read returns the next depth in meters.
func (s *UniformDepthSource) Read() float64 {
	v := s.min + s.rng.Float64()*(s.max-s.min)
	return roundTo(v, s.precision)
}

// ScriptedDepthSource replays a fixed sequence of depths. Once exhausted it keeps
// returning the last value.
type ScriptedDepthSource struct {
	values []float64
	next   int
}

// NewScriptedDepthSource creates a source replaying values. Panics if values is empty.
func NewScriptedDepthSource(values ...float64) *ScriptedDepthSource {
	if len(values) == 0 {
		panic("scripted depth source needs at least one value")
	}
	return &ScriptedDepthSource{values: append([]float64(nil), values...)}
}

// Read returns the next scripted depth.
func (s *ScriptedDepthSource) Read() float64 {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
