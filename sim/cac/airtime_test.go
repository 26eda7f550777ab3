package cac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func voiceRequest() FlowRequest {
	return FlowRequest{Class: Voice, PacketSizeBytes: 160, DataRateBps: 64_000}
}

func videoRequest() FlowRequest {
	return FlowRequest{Class: Video, PacketSizeBytes: 1200, DataRateBps: 3_000_000}
}

func TestMACOverheadBytes_QoSClassesCarryControlField(t *testing.T) {
	tests := []struct {
		class TrafficClass
		want  int
	}{
		{Voice, 44},
		{Video, 44},
		{Bursty, 42},
		{Background, 42},
	}
	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MACOverheadBytes(tt.class))
		})
	}
}

func TestTransmissionTime_RoundsSymbolsUp(t *testing.T) {
	phy := DefaultPhyConfig() // 1960 bits per symbol

	// 1960 bits fit in one symbol, 1961 need two
	assert.InDelta(t, 40e-6+13.6e-6, TransmissionTime(245, phy), 1e-15)
	assert.InDelta(t, 40e-6+2*13.6e-6, TransmissionTime(246, phy), 1e-15)
}

func TestTransmissionTime_WiderChannelIsNeverSlower(t *testing.T) {
	prev := TransmissionTime(1500, PhyConfig{ChannelWidthMHz: 20, GuardIntervalNs: 800, SpatialStreams: 1})
	for _, width := range []int{40, 80, 160} {
		cur := TransmissionTime(1500, PhyConfig{ChannelWidthMHz: width, GuardIntervalNs: 800, SpatialStreams: 1})
		assert.LessOrEqual(t, cur, prev, "width %d", width)
		prev = cur
	}
}

func TestRequiredAirtime_VoiceFlow_MatchesCostModel(t *testing.T) {
	// GIVEN a 160 B / 64 kbps voice flow on 80 MHz, 2 streams
	// 204 B frame -> 1 symbol -> 53.6 us PPDU; 215.1 us per packet; 50 pkt/s
	got := RequiredAirtime(voiceRequest(), DefaultPhyConfig())

	// THEN airtime = 50 * 215.1 us * 1.1
	assert.InDelta(t, 0.0118305, got, 1e-12)
}

func TestRequiredAirtime_VideoFlow_MatchesCostModel(t *testing.T) {
	// 1244 B frame -> 6 symbols -> 121.6 us PPDU; 283.1 us per packet; 312.5 pkt/s
	got := RequiredAirtime(videoRequest(), DefaultPhyConfig())
	assert.InDelta(t, 0.097315625, got, 1e-12)
}

func TestRequiredAirtime_Deterministic(t *testing.T) {
	// GIVEN the same inputs evaluated repeatedly
	req := videoRequest()
	first := RequiredAirtime(req, DefaultPhyConfig())

	// THEN every evaluation is bit-identical
	for i := 0; i < 100; i++ {
		if got := RequiredAirtime(req, DefaultPhyConfig()); got != first {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}

func TestRequiredAirtime_PhyOverride_ReplacesEnginePhy(t *testing.T) {
	// GIVEN a request that overrides the PHY with a narrower channel
	narrow := PhyConfig{ChannelWidthMHz: 20, GuardIntervalNs: 800, SpatialStreams: 1}
	req := videoRequest()
	req.Phy = &narrow

	// WHEN priced against the default engine PHY
	got := RequiredAirtime(req, DefaultPhyConfig())

	// THEN the override wins
	assert.Equal(t, RequiredAirtime(videoRequest(), narrow), got)
	assert.Greater(t, got, RequiredAirtime(videoRequest(), DefaultPhyConfig()))
}

func TestRequiredAirtime_ScalesLinearlyWithRate(t *testing.T) {
	base := RequiredAirtime(voiceRequest(), DefaultPhyConfig())
	doubled := voiceRequest()
	doubled.DataRateBps *= 2
	assert.InDelta(t, 2*base, RequiredAirtime(doubled, DefaultPhyConfig()), 1e-12)
}
