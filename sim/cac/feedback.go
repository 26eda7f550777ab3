package cac

import (
	"fmt"
	"math"
)

// errorRateBands maps utilization bands to a simulated packet error rate.
// Bands are checked top-down; a utilization above lower falls in the band.
var errorRateBands = []struct {
	lower float64
	rate  float64
}{
	{lower: 0.95, rate: 0.15},
	{lower: 0.90, rate: 0.05},
	{lower: 0.80, rate: 0.01},
}

// baselineErrorRate applies when utilization is at or below every band.
const baselineErrorRate = 0.001

// SimulatedErrorRate estimates packet loss from channel utilization.
// It stands in for PER feedback the engine does not observe directly.
func SimulatedErrorRate(utilization float64) float64 {
	for _, band := range errorRateBands {
		if utilization > band.lower {
			return band.rate
		}
	}
	return baselineErrorRate
}

// AdaptiveParams drive the hill-climbing threshold of one traffic class.
type AdaptiveParams struct {
	Class    TrafficClass `yaml:"class" json:"class"`       // class whose threshold adapts
	Initial  float64      `yaml:"initial" json:"initial"`   // starting threshold
	Step     float64      `yaml:"step" json:"step"`         // adjustment per decision
	Min      float64      `yaml:"min" json:"min"`           // floor
	Max      float64      `yaml:"max" json:"max"`           // cap
	Alarm    float64      `yaml:"alarm" json:"alarm"`       // error rate above which the threshold drops
	Comfort  float64      `yaml:"comfort" json:"comfort"`   // error rate below which it may rise
	Moderate float64      `yaml:"moderate" json:"moderate"` // utilization required before it rises
}

// DefaultAdaptiveParams returns the AS-CAC+ settings: bursty traffic starts at
// 0.95 and moves by 0.01 within [0.80, 0.98].
func DefaultAdaptiveParams() AdaptiveParams {
	return AdaptiveParams{
		Class:    Bursty,
		Initial:  0.95,
		Step:     0.01,
		Min:      0.80,
		Max:      0.98,
		Alarm:    0.05,
		Comfort:  0.02,
		Moderate: 0.70,
	}
}

// Validate checks the adaptation bounds.
func (p AdaptiveParams) Validate() error {
	if !p.Class.Valid() {
		return fmt.Errorf("%w: adaptive class %d unknown", ErrInvalidConfiguration, int(p.Class))
	}
	bounds := []struct {
		name  string
		value float64
	}{{"initial", p.Initial}, {"min", p.Min}, {"max", p.Max}}
	for _, b := range bounds {
		if !(b.value > 0 && b.value <= 1) {
			return fmt.Errorf("%w: adaptive %s threshold must be in (0,1], got %v", ErrInvalidConfiguration, b.name, b.value)
		}
	}
	if p.Min > p.Max {
		return fmt.Errorf("%w: adaptive min %v exceeds max %v", ErrInvalidConfiguration, p.Min, p.Max)
	}
	if p.Initial < p.Min || p.Initial > p.Max {
		return fmt.Errorf("%w: adaptive initial %v outside [%v, %v]", ErrInvalidConfiguration, p.Initial, p.Min, p.Max)
	}
	if !(p.Step >= 0) || math.IsInf(p.Step, 1) {
		return fmt.Errorf("%w: adaptive step must be finite and non-negative, got %v", ErrInvalidConfiguration, p.Step)
	}
	levels := []struct {
		name  string
		value float64
	}{{"alarm", p.Alarm}, {"comfort", p.Comfort}, {"moderate", p.Moderate}}
	for _, l := range levels {
		if !(l.value >= 0 && l.value <= 1) {
			return fmt.Errorf("%w: adaptive %s must be in [0,1], got %v", ErrInvalidConfiguration, l.name, l.value)
		}
	}
	return nil
}

// AdaptThreshold returns the next threshold for the adaptive class given the
// current one and the channel utilization. It is pure so the heuristic can be
// tested and replaced independently of the admission flow.
func AdaptThreshold(current, utilization float64, p AdaptiveParams) float64 {
	errRate := SimulatedErrorRate(utilization)
	switch {
	case errRate > p.Alarm:
		return math.Max(p.Min, current-p.Step)
	case errRate < p.Comfort && utilization > p.Moderate:
		return math.Min(p.Max, current+p.Step)
	}
	return current
}
