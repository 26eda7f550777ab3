package observe

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r04nx/soft-CAC/sim/cac"
)

func newEngine(t *testing.T, obs cac.Observer) *cac.Engine {
	t.Helper()
	e, err := cac.NewEngine(cac.DefaultConfig(), cac.WithName("ap1"), cac.WithObserver(obs))
	require.NoError(t, err)
	return e
}

func TestPromObserver_CountsDecisionsByOutcome(t *testing.T) {
	// GIVEN an engine reporting into a fresh registry
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)
	e := newEngine(t, obs)

	// WHEN nine identical video flows are requested (eight fit)
	video := cac.FlowRequest{Class: cac.Video, PacketSizeBytes: 1200, DataRateBps: 3_000_000}
	for i := 0; i < 9; i++ {
		_, _, err := e.Request(video, float64(i))
		require.NoError(t, err)
	}

	// THEN the counters split eight admitted from one blocked
	assert.Equal(t, 8.0, testutil.ToFloat64(obs.requests.WithLabelValues("ap1", "video", OutcomeAdmitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.requests.WithLabelValues("ap1", "video", OutcomeBlocked)))
	assert.Equal(t, 0.80, testutil.ToFloat64(obs.thresholds.WithLabelValues("ap1", "video")))
	assert.InDelta(t, e.Utilization(), testutil.ToFloat64(obs.utilization.WithLabelValues("ap1")), 1e-12)
}

func TestPromObserver_ReleaseUpdatesUtilization(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)
	e := newEngine(t, obs)

	_, id, err := e.Request(cac.FlowRequest{Class: cac.Voice, PacketSizeBytes: 160, DataRateBps: 64_000}, 0)
	require.NoError(t, err)
	e.Release(id, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.releases.WithLabelValues("ap1", "voice")))
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.utilization.WithLabelValues("ap1")))
}

func TestPromObserver_DeliveriesFeedBytesAndDelay(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObserver(reg)
	e := newEngine(t, obs)

	_, id, _ := e.Request(cac.FlowRequest{Class: cac.Voice, PacketSizeBytes: 160, DataRateBps: 64_000}, 0)
	e.RecordDelivery(id, 160, 0.0004, 1)
	e.RecordDelivery(id, 160, 0.0009, 2)

	assert.Equal(t, 320.0, testutil.ToFloat64(obs.rxBytes.WithLabelValues("ap1", "voice")))
	assert.Equal(t, 1, testutil.CollectAndCount(obs.delay))

	expected := `
# HELP cac_received_bytes_total Bytes delivered on admitted flows.
# TYPE cac_received_bytes_total counter
cac_received_bytes_total{class="voice",engine="ap1"} 320
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "cac_received_bytes_total"))
}

func TestNewPromObserver_DuplicateRegistration_Panics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPromObserver(reg)
	assert.Panics(t, func() { NewPromObserver(reg) })
}
