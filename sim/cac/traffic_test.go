package cac

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrafficClass_LookupTable(t *testing.T) {
	tests := []struct {
		class    TrafficClass
		name     string
		priority int
		category AccessCategory
	}{
		{Voice, "voice", 4, AccessVoice},
		{Video, "video", 3, AccessVideo},
		{Bursty, "bursty", 2, AccessBestEffort},
		{Background, "background", 1, AccessBestEffort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.class.String())
			assert.Equal(t, tt.priority, tt.class.Priority())
			assert.Equal(t, tt.category, tt.class.AccessCategory())
		})
	}
}

func TestAllTrafficClasses_PriorityOrder(t *testing.T) {
	classes := AllTrafficClasses()
	require.Len(t, classes, int(numTrafficClasses))
	for i := 1; i < len(classes); i++ {
		assert.Greater(t, classes[i-1].Priority(), classes[i].Priority())
	}
}

func TestTrafficClass_InvalidValue(t *testing.T) {
	c := TrafficClass(9)
	assert.False(t, c.Valid())
	assert.Equal(t, "class(9)", c.String())
	assert.Equal(t, 0, c.Priority())
	_, err := c.MarshalText()
	assert.Error(t, err)
}

func TestParseTrafficClass_NamesAndAliases(t *testing.T) {
	tests := []struct {
		in   string
		want TrafficClass
	}{
		{"voice", Voice},
		{"voip", Voice},
		{"video", Video},
		{"video_stream", Video},
		{"bursty", Bursty},
		{"background", Background},
		{"web", Background},
	}
	for _, tt := range tests {
		got, err := ParseTrafficClass(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseTrafficClass("Voice")
	assert.Error(t, err, "names are case-sensitive")
}

func TestTrafficClass_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(map[string]TrafficClass{"c": Video})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"video"}`, string(data))

	var back map[string]TrafficClass
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Video, back["c"])
}
