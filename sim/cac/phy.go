package cac

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// PhyConfig groups the 802.11ax PHY parameters the cost model depends on.
type PhyConfig struct {
	ChannelWidthMHz int `yaml:"channel_width_mhz" json:"channel_width_mhz"` // 20, 40, 80 or 160
	GuardIntervalNs int `yaml:"guard_interval_ns" json:"guard_interval_ns"` // HE guard interval
	SpatialStreams  int `yaml:"spatial_streams" json:"spatial_streams"`     // NSS, must be > 0
}

// DefaultPhyConfig returns 80 MHz, 800 ns GI, 2 spatial streams.
func DefaultPhyConfig() PhyConfig {
	return PhyConfig{ChannelWidthMHz: 80, GuardIntervalNs: 800, SpatialStreams: 2}
}

// bitsPerSymbolPerStream is the HE-MCS5 (64-QAM, rate 3/4) data bits carried
// per OFDM symbol and spatial stream, keyed by channel width.
var bitsPerSymbolPerStream = map[int]int{
	20:  234,
	40:  468,
	80:  980,
	160: 1960,
}

// heGuardIntervals are the guard intervals defined for HE PPDUs.
var heGuardIntervals = map[int]bool{800: true, 1600: true, 3200: true}

// BitsPerSymbol returns the data bits per OFDM symbol across all spatial streams.
// Returns 0 for widths outside the lookup table; Validate rejects those.
func (p PhyConfig) BitsPerSymbol() int {
	return bitsPerSymbolPerStream[p.ChannelWidthMHz] * p.SpatialStreams
}

// Validate checks that every PHY parameter is positive and the channel width is tabulated.
func (p PhyConfig) Validate() error {
	if p.ChannelWidthMHz <= 0 || p.GuardIntervalNs <= 0 || p.SpatialStreams <= 0 {
		return fmt.Errorf("%w: PHY parameters must be positive, got width=%d gi=%d nss=%d",
			ErrInvalidConfiguration, p.ChannelWidthMHz, p.GuardIntervalNs, p.SpatialStreams)
	}
	if _, ok := bitsPerSymbolPerStream[p.ChannelWidthMHz]; !ok {
		return fmt.Errorf("%w: channel width must be one of 20/40/80/160 MHz, got %d",
			ErrInvalidConfiguration, p.ChannelWidthMHz)
	}
	return nil
}

// HEGuardInterval reports whether the guard interval is one defined for HE
// PPDUs. Other positive values pass Validate; symbol timing is 13.6 us either way.
func (p PhyConfig) HEGuardInterval() bool {
	return heGuardIntervals[p.GuardIntervalNs]
}

// warnGuardInterval logs a non-HE guard interval against label.
func warnGuardInterval(label string, p PhyConfig) {
	if !p.HEGuardInterval() {
		logrus.Warnf("[%s] guard interval %d ns is not an HE value (800/1600/3200); symbol timing stays at 13.6 us",
			label, p.GuardIntervalNs)
	}
}
