package cac

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_EmptyEngine_ZeroBlockingProbability(t *testing.T) {
	e := mustEngine(t, DefaultConfig(), WithName("ap1"))

	s := e.Snapshot()

	assert.Equal(t, "ap1", s.Engine)
	assert.Equal(t, "static", s.Policy)
	assert.Equal(t, 0.0, s.BlockingProbability)
	assert.Equal(t, uint64(0), s.TotalRequests)
	assert.Empty(t, s.Flows)
	assert.Len(t, s.Classes, 4)
}

func TestSnapshot_CountsAndFlows(t *testing.T) {
	// GIVEN nine video requests (one blocked), one release and a delivery
	e := mustEngine(t, DefaultConfig())
	for i := 0; i < 9; i++ {
		_, _, err := e.Request(videoRequest(), float64(i))
		require.NoError(t, err)
	}
	e.RecordDelivery(FlowID(2), 1200, 0.002, 3)
	e.Release(FlowID(1), 9)

	// WHEN a snapshot is taken
	s := e.Snapshot()

	// THEN counters and per-flow reports reflect the history
	assert.Equal(t, uint64(9), s.TotalRequests)
	assert.Equal(t, uint64(8), s.AdmittedTotal)
	assert.Equal(t, 7, s.LiveFlows)
	assert.Equal(t, uint64(1), s.Blocked)
	assert.Equal(t, ClassCounters{Requests: 9, Admitted: 8, Blocked: 1}, s.Classes["video"])
	require.Len(t, s.Flows, 8, "released flows keep their report")
	assert.Nil(t, s.Flows[0].Record)
	require.NotNil(t, s.Flows[1].Record)
	assert.Equal(t, uint64(1), s.Flows[1].Stats.RxPackets)
	assert.Equal(t, 0.002, s.Flows[1].Derived.MeanDelay)
}

func TestSnapshot_DoesNotAliasEngine(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	_, id, _ := e.Request(voiceRequest(), 0)
	e.RecordDelivery(id, 160, 0.001, 1)

	s := e.Snapshot()
	s.Thresholds["voice"] = 0.1
	s.Flows[0].Stats.Delays[0] = 9

	fs, _ := e.FlowStats(id)
	assert.Equal(t, 0.001, fs.Delays[0])
	assert.Equal(t, 0.80, e.Threshold(Voice))
}

func TestSnapshot_Print(t *testing.T) {
	e := mustEngine(t, DefaultConfig(), WithName("ap1"))
	_, id, _ := e.Request(voiceRequest(), 0)
	e.RecordDelivery(id, 160, 0.0015, 1)

	var buf bytes.Buffer
	e.Snapshot().Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "=== Airtime CAC [ap1] ===")
	assert.Contains(t, out, "Blocking Probability : 0.0000")
	assert.Contains(t, out, "Utilization          : 0.0118")
	assert.Contains(t, out, "Flow 1 (voice):")
	assert.Contains(t, out, "Avg Delay  : 1.500 ms")
}
