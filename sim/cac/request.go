package cac

import "fmt"

// FlowRequest describes a candidate flow. It is consumed by a single
// admission call and never retained.
type FlowRequest struct {
	Class           TrafficClass
	PacketSizeBytes int        // average packet size, > 0
	DataRateBps     float64    // offered rate in bits per second, > 0
	Phy             *PhyConfig // optional per-flow PHY override
}

// Validate rejects requests the cost model cannot price.
func (r FlowRequest) Validate() error {
	if !r.Class.Valid() {
		return fmt.Errorf("%w: unknown traffic class %d", ErrInvalidRequest, int(r.Class))
	}
	if r.PacketSizeBytes <= 0 {
		return fmt.Errorf("%w: packet size must be > 0, got %d", ErrInvalidRequest, r.PacketSizeBytes)
	}
	if !(r.DataRateBps > 0) {
		return fmt.Errorf("%w: data rate must be > 0, got %v", ErrInvalidRequest, r.DataRateBps)
	}
	if r.Phy != nil {
		if err := r.Phy.Validate(); err != nil {
			return fmt.Errorf("%w: PHY override: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}
