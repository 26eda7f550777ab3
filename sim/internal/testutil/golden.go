// Package testutil provides shared test infrastructure for the admission
// engine packages: the golden airtime dataset and tolerance assertions.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenAirtimeDataset represents the structure of testdata/golden_airtime.json.
type GoldenAirtimeDataset struct {
	Tests []GoldenAirtimeCase `json:"tests"`
}

// GoldenAirtimeCase is one hand-checked flow priced by the cost model.
type GoldenAirtimeCase struct {
	Name            string  `json:"name"`
	Class           string  `json:"class"`
	PacketSize      int     `json:"packet_size"`
	DataRate        float64 `json:"data_rate"`
	ChannelWidthMHz int     `json:"channel_width_mhz"`
	SpatialStreams  int     `json:"spatial_streams"`

	// Expected values
	Symbols    int     `json:"symbols"`      // OFDM data symbols per PPDU
	PerPacketS float64 `json:"per_packet_s"` // DIFS + backoff + PPDU + SIFS + ACK
	Airtime    float64 `json:"airtime"`      // with safety margin
}

// LoadGoldenAirtime loads the golden airtime dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenAirtime(t *testing.T) *GoldenAirtimeDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_airtime.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden airtime dataset: %v", err)
	}

	var dataset GoldenAirtimeDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden airtime dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden airtime dataset is empty")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
