// Package trace provides decision-trace recording for admission control analysis.
// This package has no dependencies on sim/cac: it stores pure data types.
package trace

// AdmissionRecord captures a single admission decision.
type AdmissionRecord struct {
	Engine          string  `json:"engine"`
	FlowID          uint64  `json:"flow_id"` // 0 when rejected
	Class           string  `json:"class"`
	Clock           float64 `json:"clock"`
	Admitted        bool    `json:"admitted"`
	RequiredAirtime float64 `json:"required_airtime"`
	Threshold       float64 `json:"threshold"`
	Utilization     float64 `json:"utilization"` // after the decision was committed
	Reason          string  `json:"reason"`
}

// ReleaseRecord captures a flow leaving the registry.
type ReleaseRecord struct {
	Engine      string  `json:"engine"`
	FlowID      uint64  `json:"flow_id"`
	Class       string  `json:"class"`
	Clock       float64 `json:"clock"`
	Airtime     float64 `json:"airtime"`
	Utilization float64 `json:"utilization"` // after the release
}
