package cac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBundle_ValidYAML(t *testing.T) {
	path := writeTempYAML(t, `
policy: adaptive
thresholds:
  all: 0.85
  voice: 0.90
phy:
  channel_width_mhz: 160
  spatial_streams: 4
adaptive:
  class: bursty
  initial: 0.93
  step: 0.02
`)
	bundle, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "adaptive", bundle.Policy)
	require.NotNil(t, bundle.Thresholds.All)
	assert.Equal(t, 0.85, *bundle.Thresholds.All)
	assert.Nil(t, bundle.Thresholds.Video)
	require.NotNil(t, bundle.Phy.ChannelWidthMHz)
	assert.Equal(t, 160, *bundle.Phy.ChannelWidthMHz)
	assert.Nil(t, bundle.Phy.GuardIntervalNs)

	cfg, err := bundle.Apply(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "adaptive", cfg.Policy)
	assert.Equal(t, 0.90, cfg.Thresholds[Voice])
	assert.Equal(t, 0.85, cfg.Thresholds[Video])
	assert.Equal(t, 0.85, cfg.Thresholds[Background])
	assert.Equal(t, PhyConfig{ChannelWidthMHz: 160, GuardIntervalNs: 800, SpatialStreams: 4}, cfg.Phy)
	assert.Equal(t, Bursty, cfg.Adaptive.Class)
	assert.Equal(t, 0.93, cfg.Adaptive.Initial)
	assert.Equal(t, 0.02, cfg.Adaptive.Step)
	assert.Equal(t, 0.80, cfg.Adaptive.Min, "unset fields keep the base value")
}

func TestLoadBundle_MissingFile(t *testing.T) {
	_, err := LoadBundle(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseBundle_UnknownKey_Rejected(t *testing.T) {
	_, err := ParseBundle([]byte("policy: static\nthreshold: 0.8\n"))
	assert.Error(t, err)
}

func TestParseBundle_EmptyDocument_LeavesBaseUntouched(t *testing.T) {
	bundle, err := ParseBundle([]byte("policy: static\n"))
	require.NoError(t, err)

	cfg, err := bundle.Apply(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestBundle_Validate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown policy", "policy: greedy\n"},
		{"threshold above one", "thresholds:\n  video: 1.2\n"},
		{"zero threshold", "thresholds:\n  all: 0\n"},
		{"unknown adaptive class", "adaptive:\n  class: gaming\n"},
		{"NaN adaptive step", "policy: adaptive\nadaptive:\n  step: .nan\n"},
		{"negative adaptive step", "adaptive:\n  step: -0.01\n"},
		{"negative alarm", "policy: adaptive\nadaptive:\n  alarm: -1\n"},
		{"comfort above one", "adaptive:\n  comfort: 1.5\n"},
		{"moderate NaN", "adaptive:\n  moderate: .nan\n"},
		{"adaptive max above one", "adaptive:\n  max: 1.2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := ParseBundle([]byte(tt.yaml))
			require.NoError(t, err)
			assert.ErrorIs(t, bundle.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestBundle_Apply_BadAdaptiveLevels_RejectedBeforeEngine(t *testing.T) {
	// GIVEN an adaptive bundle whose step and alarm level could drive the
	// bursty ceiling out of (0,1]
	bundle, err := ParseBundle([]byte("policy: adaptive\nadaptive:\n  step: .nan\n  alarm: -1\n"))
	require.NoError(t, err)

	// WHEN it is applied
	cfg, err := bundle.Apply(DefaultConfig())

	// THEN it is refused and no engine can be built from the unvalidated values
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, Config{}, cfg)
}

func TestBundle_Apply_InvalidPhy_Rejected(t *testing.T) {
	bundle, err := ParseBundle([]byte("phy:\n  spatial_streams: 0\n"))
	require.NoError(t, err)

	_, err = bundle.Apply(DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "static", cfg.Policy)
	assert.Equal(t, UniformThresholds(0.80), cfg.Thresholds)
}
