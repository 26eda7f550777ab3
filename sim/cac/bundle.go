package cac

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle is the YAML form of an engine configuration.
// Nil pointer fields mean "not set in YAML" and leave the base config untouched.
// String fields use empty string for "not set".
type Bundle struct {
	Policy     string           `yaml:"policy"`
	Thresholds ThresholdsBundle `yaml:"thresholds"`
	Phy        PhyBundle        `yaml:"phy"`
	Adaptive   AdaptiveBundle   `yaml:"adaptive"`
}

// ThresholdsBundle holds optional per-class ceilings.
type ThresholdsBundle struct {
	All        *float64 `yaml:"all"` // applied first, then per-class overrides
	Voice      *float64 `yaml:"voice"`
	Video      *float64 `yaml:"video"`
	Bursty     *float64 `yaml:"bursty"`
	Background *float64 `yaml:"background"`
}

// PhyBundle holds optional PHY parameters.
type PhyBundle struct {
	ChannelWidthMHz *int `yaml:"channel_width_mhz"`
	GuardIntervalNs *int `yaml:"guard_interval_ns"`
	SpatialStreams  *int `yaml:"spatial_streams"`
}

// AdaptiveBundle holds optional adaptive-threshold parameters.
type AdaptiveBundle struct {
	Class    string   `yaml:"class"`
	Initial  *float64 `yaml:"initial"`
	Step     *float64 `yaml:"step"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Alarm    *float64 `yaml:"alarm"`
	Comfort  *float64 `yaml:"comfort"`
	Moderate *float64 `yaml:"moderate"`
}

// LoadBundle reads and strictly parses a YAML engine configuration file.
// Unknown keys are errors.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine config: %w", err)
	}
	return ParseBundle(data)
}

// ParseBundle strictly parses YAML bytes into a Bundle.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	return &b, nil
}

// Validate checks names and ranges of the fields that are set.
func (b *Bundle) Validate() error {
	if !IsValidAdmissionPolicy(b.Policy) {
		return fmt.Errorf("%w: unknown admission policy %q", ErrInvalidConfiguration, b.Policy)
	}
	if b.Adaptive.Class != "" {
		if _, err := ParseTrafficClass(b.Adaptive.Class); err != nil {
			return fmt.Errorf("%w: adaptive class: %v", ErrInvalidConfiguration, err)
		}
	}
	t := b.Thresholds
	ceilings := []namedValue{
		{"thresholds.all", t.All}, {"thresholds.voice", t.Voice}, {"thresholds.video", t.Video},
		{"thresholds.bursty", t.Bursty}, {"thresholds.background", t.Background},
		{"adaptive.initial", b.Adaptive.Initial}, {"adaptive.min", b.Adaptive.Min}, {"adaptive.max", b.Adaptive.Max},
	}
	for _, n := range ceilings {
		if n.value != nil && !(*n.value > 0 && *n.value <= 1) {
			return fmt.Errorf("%w: %s must be in (0,1], got %v", ErrInvalidConfiguration, n.name, *n.value)
		}
	}
	levels := []namedValue{
		{"adaptive.alarm", b.Adaptive.Alarm}, {"adaptive.comfort", b.Adaptive.Comfort}, {"adaptive.moderate", b.Adaptive.Moderate},
	}
	for _, n := range levels {
		if n.value != nil && !(*n.value >= 0 && *n.value <= 1) {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidConfiguration, n.name, *n.value)
		}
	}
	if s := b.Adaptive.Step; s != nil && (!(*s >= 0) || math.IsInf(*s, 1)) {
		return fmt.Errorf("%w: adaptive.step must be finite and non-negative, got %v", ErrInvalidConfiguration, *s)
	}
	return nil
}

type namedValue struct {
	name  string
	value *float64
}

// Apply overlays the set fields of the bundle onto base and validates the result.
func (b *Bundle) Apply(base Config) (Config, error) {
	if err := b.Validate(); err != nil {
		return Config{}, err
	}
	cfg := base
	if b.Policy != "" {
		cfg.Policy = b.Policy
	}

	t := b.Thresholds
	if t.All != nil {
		cfg.Thresholds = UniformThresholds(*t.All)
	}
	setFloat(&cfg.Thresholds[Voice], t.Voice)
	setFloat(&cfg.Thresholds[Video], t.Video)
	setFloat(&cfg.Thresholds[Bursty], t.Bursty)
	setFloat(&cfg.Thresholds[Background], t.Background)

	setInt(&cfg.Phy.ChannelWidthMHz, b.Phy.ChannelWidthMHz)
	setInt(&cfg.Phy.GuardIntervalNs, b.Phy.GuardIntervalNs)
	setInt(&cfg.Phy.SpatialStreams, b.Phy.SpatialStreams)

	a := b.Adaptive
	if a.Class != "" {
		// Validated above.
		cfg.Adaptive.Class, _ = ParseTrafficClass(a.Class)
	}
	setFloat(&cfg.Adaptive.Initial, a.Initial)
	setFloat(&cfg.Adaptive.Step, a.Step)
	setFloat(&cfg.Adaptive.Min, a.Min)
	setFloat(&cfg.Adaptive.Max, a.Max)
	setFloat(&cfg.Adaptive.Alarm, a.Alarm)
	setFloat(&cfg.Adaptive.Comfort, a.Comfort)
	setFloat(&cfg.Adaptive.Moderate, a.Moderate)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
