// Package scenario drives admission engines with synthetic Wi-Fi traffic on a
// discrete-event clock, producing the per-AP reports and admission logs used
// to compare threshold policies.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r04nx/soft-CAC/sim/cac"
)

// ErrInvalidScenario is returned when a scenario file is structurally valid
// YAML but describes an impossible run.
var ErrInvalidScenario = errors.New("invalid scenario")

// Spec describes one run: the access points, their engine configuration and
// the flows offered to each.
type Spec struct {
	Version      string            `yaml:"version"`
	Seed         int64             `yaml:"seed"`
	HorizonS     float64           `yaml:"horizon_s"`
	AccessPoints []AccessPointSpec `yaml:"access_points"`
}

// AccessPointSpec is one engine and its offered traffic.
type AccessPointSpec struct {
	ID     string      `yaml:"id"`
	Config cac.Bundle  `yaml:"config"`
	Flows  []FlowGroup `yaml:"flows"`
}

// FlowGroup is Count identical flows whose arrivals are spaced StaggerS apart
// starting at StartS.
type FlowGroup struct {
	Class      string  `yaml:"class"`
	Count      int     `yaml:"count"`
	PacketSize int     `yaml:"packet_size"` // bytes
	DataRate   float64 `yaml:"data_rate"`   // peak bits per second
	DutyCycle  float64 `yaml:"duty_cycle"`  // fraction of time on; 0 means 1
	OnMeanS    float64 `yaml:"on_mean_s"`   // mean on period when DutyCycle < 1; 0 means 1s
	StartS     float64 `yaml:"start_s"`
	StaggerS   float64 `yaml:"stagger_s"`
	HoldingS   float64 `yaml:"holding_s"`   // 0 means the flow lives until the horizon
	SizeJitter float64 `yaml:"size_jitter"` // packet size varies uniformly by +/- this fraction
}

// AdmissionRate is the rate priced at admission: peak rate times duty cycle.
func (g FlowGroup) AdmissionRate() float64 {
	return g.DataRate * g.DutyCycle
}

// DefaultSpec returns the single-AP reference mix: 10 voice, 8 video,
// 6 bursty and 6 background flows over 60 simulated seconds.
func DefaultSpec() *Spec {
	s := &Spec{
		Version:  "1",
		Seed:     42,
		HorizonS: 60,
		AccessPoints: []AccessPointSpec{{
			ID: "ap1",
			Flows: []FlowGroup{
				{Class: "voice", Count: 10, PacketSize: 160, DataRate: 64_000, StartS: 1.0, StaggerS: 0.1},
				{Class: "video", Count: 8, PacketSize: 1200, DataRate: 3_000_000, StartS: 2.0, StaggerS: 0.2, SizeJitter: 0.2},
				{Class: "bursty", Count: 6, PacketSize: 1400, DataRate: 5_000_000, DutyCycle: 0.5, StartS: 3.0, StaggerS: 0.2},
				{Class: "background", Count: 6, PacketSize: 1000, DataRate: 1_000_000, StartS: 4.0, StaggerS: 0.2},
			},
		}},
	}
	s.applyDefaults()
	return s
}

// LoadSpec reads, strictly parses, defaults and validates a scenario file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec strictly parses YAML bytes into a Spec, then defaults and
// validates it. Unknown keys are errors.
func ParseSpec(data []byte) (*Spec, error) {
	var s Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Spec) applyDefaults() {
	if s.Version == "" {
		s.Version = "1"
	}
	for i := range s.AccessPoints {
		ap := &s.AccessPoints[i]
		if ap.ID == "" {
			ap.ID = fmt.Sprintf("ap%d", i+1)
		}
		for j := range ap.Flows {
			g := &ap.Flows[j]
			if g.DutyCycle == 0 {
				g.DutyCycle = 1
			}
			if g.OnMeanS == 0 {
				g.OnMeanS = 1
			}
		}
	}
}

// Validate checks the run parameters, every access point and every flow group.
// Errors wrap ErrInvalidScenario, or ErrInvalidConfiguration for engine bundles.
func (s *Spec) Validate() error {
	if !(s.HorizonS > 0) {
		return fmt.Errorf("%w: horizon_s must be > 0, got %v", ErrInvalidScenario, s.HorizonS)
	}
	if len(s.AccessPoints) == 0 {
		return fmt.Errorf("%w: at least one access point is required", ErrInvalidScenario)
	}
	seen := make(map[string]bool, len(s.AccessPoints))
	for _, ap := range s.AccessPoints {
		if seen[ap.ID] {
			return fmt.Errorf("%w: duplicate access point id %q", ErrInvalidScenario, ap.ID)
		}
		seen[ap.ID] = true
		if err := ap.Config.Validate(); err != nil {
			return fmt.Errorf("access point %s: %w", ap.ID, err)
		}
		for i, g := range ap.Flows {
			if err := g.validate(); err != nil {
				return fmt.Errorf("%w: access point %s flow group %d: %v", ErrInvalidScenario, ap.ID, i, err)
			}
		}
	}
	return nil
}

func (g FlowGroup) validate() error {
	if _, err := cac.ParseTrafficClass(g.Class); err != nil {
		return err
	}
	switch {
	case g.Count < 0:
		return fmt.Errorf("count must be >= 0, got %d", g.Count)
	case g.PacketSize <= 0:
		return fmt.Errorf("packet_size must be > 0, got %d", g.PacketSize)
	case !(g.DataRate > 0):
		return fmt.Errorf("data_rate must be > 0, got %v", g.DataRate)
	case !(g.DutyCycle > 0 && g.DutyCycle <= 1):
		return fmt.Errorf("duty_cycle must be in (0,1], got %v", g.DutyCycle)
	case !(g.OnMeanS > 0):
		return fmt.Errorf("on_mean_s must be > 0, got %v", g.OnMeanS)
	case g.StartS < 0 || g.StaggerS < 0 || g.HoldingS < 0:
		return fmt.Errorf("start_s, stagger_s and holding_s must be >= 0")
	case g.SizeJitter < 0 || g.SizeJitter >= 1:
		return fmt.Errorf("size_jitter must be in [0,1), got %v", g.SizeJitter)
	}
	return nil
}
