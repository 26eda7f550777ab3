package cac

import "fmt"

// Config groups everything an Engine needs at construction.
type Config struct {
	Policy     string         // "static" (default) or "adaptive"
	Thresholds Thresholds     // per-class ceilings
	Phy        PhyConfig      // engine-wide PHY parameters
	Adaptive   AdaptiveParams // used only when Policy is "adaptive"
}

// DefaultConfig returns a static engine with a 0.80 ceiling for every class
// on an 80 MHz, 2-stream channel.
func DefaultConfig() Config {
	return Config{
		Policy:     "static",
		Thresholds: UniformThresholds(0.80),
		Phy:        DefaultPhyConfig(),
		Adaptive:   DefaultAdaptiveParams(),
	}
}

// Validate checks policy name, thresholds and PHY parameters.
// Errors wrap ErrInvalidConfiguration.
func (c Config) Validate() error {
	if !IsValidAdmissionPolicy(c.Policy) {
		return fmt.Errorf("%w: unknown admission policy %q", ErrInvalidConfiguration, c.Policy)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.Phy.Validate(); err != nil {
		return err
	}
	if c.Policy == "adaptive" {
		if err := c.Adaptive.Validate(); err != nil {
			return err
		}
	}
	return nil
}
