package cac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func admitDecision(airtime float64) Decision {
	return Decision{Admit: true, RequiredAirtime: airtime, Reason: "admitted"}
}

func TestRegistry_Admit_MonotonicIDs(t *testing.T) {
	r := NewRegistry()
	var prev FlowID
	for i := 0; i < 10; i++ {
		id, ok := r.Admit(admitDecision(0.01), voiceRequest(), float64(i))
		require.True(t, ok)
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, FlowID(10), prev)
}

func TestRegistry_Admit_IDsNotReusedAfterRelease(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Admit(admitDecision(0.01), voiceRequest(), 0)
	r.Release(a)
	b, _ := r.Admit(admitDecision(0.01), voiceRequest(), 1)
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
}

func TestRegistry_Admit_RejectedDecisionCommitsNothing(t *testing.T) {
	r := NewRegistry()
	id, ok := r.Admit(Decision{Admit: false, RequiredAirtime: 0.3}, videoRequest(), 0)
	assert.False(t, ok)
	assert.Equal(t, FlowID(0), id)
	assert.Equal(t, 0.0, r.Utilization())
	assert.Equal(t, 0, r.LiveCount())
}

func TestRegistry_Admit_RecordCarriesClassConstants(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Admit(admitDecision(0.0973), videoRequest(), 2.5)

	rec, ok := r.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, Video, rec.Class)
	assert.Equal(t, AccessVideo, rec.AccessCategory)
	assert.Equal(t, 3, rec.Priority)
	assert.Equal(t, 1200, rec.PacketSizeBytes)
	assert.Equal(t, 0.0973, rec.RequiredAirtime)
	assert.Equal(t, 2.5, rec.AdmittedAt)
}

func TestRegistry_Release_Idempotent(t *testing.T) {
	// GIVEN one admitted flow
	r := NewRegistry()
	id, _ := r.Admit(admitDecision(0.2), videoRequest(), 0)

	// WHEN released twice
	first := r.Release(id)
	second := r.Release(id)

	// THEN only the first release changes anything
	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, 0.0, r.Utilization())
	assert.Equal(t, 0, r.LiveCount())
}

func TestRegistry_Release_RestoresUtilizationExactly(t *testing.T) {
	// GIVEN a registry holding a few flows with awkward airtimes
	r := NewRegistry()
	airtimes := []float64{0.1, 0.2, 0.0118305, 0.097315625}
	for _, a := range airtimes {
		r.Admit(admitDecision(a), voiceRequest(), 0)
	}
	before := r.Utilization()

	// WHEN another flow is admitted and then released
	id, _ := r.Admit(admitDecision(0.3), videoRequest(), 1)
	r.Release(id)

	// THEN utilization is bit-identical to the value before admission
	assert.Equal(t, before, r.Utilization())
}

func TestRegistry_Release_MiddleFlow_UtilizationEqualsSumOfLive(t *testing.T) {
	r := NewRegistry()
	ids := make([]FlowID, 0)
	for _, a := range []float64{0.1, 0.2, 0.3, 0.15} {
		id, _ := r.Admit(admitDecision(a), voiceRequest(), 0)
		ids = append(ids, id)
	}
	r.Release(ids[1])

	sum := 0.0
	for _, rec := range r.Flows() {
		sum += rec.RequiredAirtime
	}
	assert.Equal(t, sum, r.Utilization())
	assert.Len(t, r.Flows(), 3)
	assert.Equal(t, ids[0], r.Flows()[0].ID)
	assert.Equal(t, ids[2], r.Flows()[1].ID)
}

func TestRegistry_Release_UnknownID_NoOp(t *testing.T) {
	r := NewRegistry()
	r.Admit(admitDecision(0.2), videoRequest(), 0)

	assert.False(t, r.Release(FlowID(42)))
	assert.Equal(t, 0.2, r.Utilization())
	assert.Equal(t, 1, r.LiveCount())
}
