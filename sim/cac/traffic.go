package cac

import "fmt"

// TrafficClass identifies the QoS bucket a flow belongs to.
type TrafficClass int

const (
	Voice TrafficClass = iota
	Video
	Bursty
	Background

	numTrafficClasses
)

// AccessCategory is the 802.11e/EDCA queue a class maps onto.
type AccessCategory string

const (
	AccessVoice      AccessCategory = "AC_VO"
	AccessVideo      AccessCategory = "AC_VI"
	AccessBestEffort AccessCategory = "AC_BE"
	AccessBackground AccessCategory = "AC_BK"
)

// classInfo holds the per-class constants used by the cost model and reports.
type classInfo struct {
	name      string
	priority  int            // higher = more important
	category  AccessCategory // EDCA queue
	qosHeader bool           // adds the QoS control field to the MAC header
}

// classTable is indexed by TrafficClass. New classes are added here only.
var classTable = [numTrafficClasses]classInfo{
	Voice:      {name: "voice", priority: 4, category: AccessVoice, qosHeader: true},
	Video:      {name: "video", priority: 3, category: AccessVideo, qosHeader: true},
	Bursty:     {name: "bursty", priority: 2, category: AccessBestEffort},
	Background: {name: "background", priority: 1, category: AccessBestEffort},
}

// AllTrafficClasses returns every class in priority order, highest first.
func AllTrafficClasses() []TrafficClass {
	return []TrafficClass{Voice, Video, Bursty, Background}
}

// Valid reports whether c is a known class.
func (c TrafficClass) Valid() bool {
	return c >= 0 && c < numTrafficClasses
}

func (c TrafficClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classTable[c].name
}

// Priority returns the fixed priority rank of the class (higher = more important).
func (c TrafficClass) Priority() int {
	if !c.Valid() {
		return 0
	}
	return classTable[c].priority
}

// AccessCategory returns the EDCA access category the class is queued on.
func (c TrafficClass) AccessCategory() AccessCategory {
	if !c.Valid() {
		return AccessBestEffort
	}
	return classTable[c].category
}

// MarshalText encodes the class by name, so JSON and YAML stay readable.
func (c TrafficClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown traffic class %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name produced by MarshalText.
func (c *TrafficClass) UnmarshalText(text []byte) error {
	parsed, err := ParseTrafficClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseTrafficClass maps a class name to its TrafficClass.
// The names "voip", "video_stream" and "web" are accepted as aliases.
func ParseTrafficClass(name string) (TrafficClass, error) {
	switch name {
	case "voice", "voip":
		return Voice, nil
	case "video", "video_stream":
		return Video, nil
	case "bursty":
		return Bursty, nil
	case "background", "web":
		return Background, nil
	}
	return 0, fmt.Errorf("unknown traffic class %q", name)
}
