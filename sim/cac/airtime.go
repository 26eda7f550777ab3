package cac

import "math"

// MAC framing overhead added to every payload.
const (
	baseMACOverheadBytes = 42 // MAC header 30 + LLC/SNAP 8 + FCS 4
	qosControlBytes      = 2  // QoS control field for classes with QoS signaling
)

// HE PHY timing.
const (
	preambleSeconds = 40e-6
	symbolSeconds   = 13.6e-6 // 12.8 us symbol + 0.8 us GI
)

// Per-packet protocol overhead outside the PPDU.
const (
	difsSeconds       = 34e-6
	sifsSeconds       = 16e-6
	ackSeconds        = 44e-6
	avgBackoffSeconds = 67.5e-6 // CWmin = 15, 9 us slots, mean 7.5 slots
)

// AirtimeSafetyMargin scales the computed airtime to absorb retransmissions
// and contention variance.
const AirtimeSafetyMargin = 1.10

// MACOverheadBytes returns the per-frame MAC/LLC overhead for a class.
func MACOverheadBytes(class TrafficClass) int {
	if class.Valid() && classTable[class].qosHeader {
		return baseMACOverheadBytes + qosControlBytes
	}
	return baseMACOverheadBytes
}

// TransmissionTime returns the PPDU duration in seconds for a frame of
// frameBytes (payload plus MAC overhead) on the given PHY.
// The PHY must have passed Validate.
func TransmissionTime(frameBytes int, phy PhyConfig) float64 {
	bits := float64(frameBytes * 8)
	symbols := math.Ceil(bits / float64(phy.BitsPerSymbol()))
	return preambleSeconds + symbols*symbolSeconds
}

// PerPacketTime returns the channel time one packet of the class occupies:
// DIFS, mean backoff, PPDU, SIFS and ACK.
func PerPacketTime(packetBytes int, class TrafficClass, phy PhyConfig) float64 {
	tx := TransmissionTime(packetBytes+MACOverheadBytes(class), phy)
	return difsSeconds + avgBackoffSeconds + tx + sifsSeconds + ackSeconds
}

// RequiredAirtime returns the fraction of channel time the flow needs.
// The request must have passed Validate; the override PHY, when present,
// replaces phy for this flow only. The result is deterministic in its inputs.
func RequiredAirtime(req FlowRequest, phy PhyConfig) float64 {
	if req.Phy != nil {
		phy = *req.Phy
	}
	packetRate := req.DataRateBps / (float64(req.PacketSizeBytes) * 8.0)
	return packetRate * PerPacketTime(req.PacketSizeBytes, req.Class, phy) * AirtimeSafetyMargin
}
