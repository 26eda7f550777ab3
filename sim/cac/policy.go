package cac

import "fmt"

// Thresholds is the per-class utilization ceiling table, indexed by TrafficClass.
type Thresholds [numTrafficClasses]float64

// UniformThresholds returns a table with the same ceiling for every class.
func UniformThresholds(v float64) Thresholds {
	var t Thresholds
	for i := range t {
		t[i] = v
	}
	return t
}

// SoftThresholds returns the multi-class preset: voice 0.90, video 0.80,
// bursty 0.95 (fills the gaps), background 0.80.
func SoftThresholds() Thresholds {
	return Thresholds{Voice: 0.90, Video: 0.80, Bursty: 0.95, Background: 0.80}
}

// For returns the ceiling of a class.
func (t Thresholds) For(class TrafficClass) float64 {
	if !class.Valid() {
		return 0
	}
	return t[class]
}

// Validate checks every ceiling lies in (0, 1].
func (t Thresholds) Validate() error {
	for _, class := range AllTrafficClasses() {
		v := t[class]
		if !(v > 0 && v <= 1) {
			return fmt.Errorf("%w: %s threshold must be in (0,1], got %v", ErrInvalidConfiguration, class, v)
		}
	}
	return nil
}

// ByName returns the table keyed by class name, for reports.
func (t Thresholds) ByName() map[string]float64 {
	out := make(map[string]float64, len(t))
	for _, class := range AllTrafficClasses() {
		out[class.String()] = t[class]
	}
	return out
}

// State is the read-only view of an engine a policy decides against.
type State struct {
	Utilization float64
	Thresholds  Thresholds
}

// Decision is the outcome of one admission check. A rejection is an ordinary
// Decision with Admit false, never an error.
type Decision struct {
	Admit           bool
	Class           TrafficClass
	RequiredAirtime float64
	Threshold       float64 // ceiling applied to this request
	Utilization     float64 // utilization the check ran against
	Reason          string
}

// AdmissionPolicy decides whether a flow fits under its class ceiling.
// Decide must not mutate anything; Adapt is the one hook allowed to move the
// threshold table and runs immediately before Decide on the same state.
type AdmissionPolicy interface {
	Name() string
	Adapt(thresholds *Thresholds, utilization float64)
	Decide(state State, req FlowRequest, airtime float64) Decision
}

// thresholdRule admits iff utilization + airtime <= threshold[class].
// Every class draws on the same utilization pool.
func thresholdRule(state State, req FlowRequest, airtime float64) Decision {
	threshold := state.Thresholds.For(req.Class)
	d := Decision{
		Class:           req.Class,
		RequiredAirtime: airtime,
		Threshold:       threshold,
		Utilization:     state.Utilization,
	}
	if state.Utilization+airtime <= threshold {
		d.Admit = true
		d.Reason = "admitted"
		return d
	}
	d.Reason = fmt.Sprintf("capacity exceeded: %.4f + %.4f > %.4f", state.Utilization, airtime, threshold)
	return d
}

// StaticThreshold applies fixed per-class ceilings.
type StaticThreshold struct{}

func (p *StaticThreshold) Name() string { return "static" }

func (p *StaticThreshold) Adapt(_ *Thresholds, _ float64) {}

func (p *StaticThreshold) Decide(state State, req FlowRequest, airtime float64) Decision {
	return thresholdRule(state, req, airtime)
}

// AdaptiveThreshold hill-climbs the ceiling of one class from simulated loss
// feedback; all other classes keep their static ceilings.
type AdaptiveThreshold struct {
	params AdaptiveParams
}

// NewAdaptiveThreshold creates an AdaptiveThreshold with the given parameters.
func NewAdaptiveThreshold(params AdaptiveParams) *AdaptiveThreshold {
	return &AdaptiveThreshold{params: params}
}

func (p *AdaptiveThreshold) Name() string { return "adaptive" }

// Params returns the adaptation parameters.
func (p *AdaptiveThreshold) Params() AdaptiveParams { return p.params }

// Adapt moves the designated class ceiling one step according to AdaptThreshold.
func (p *AdaptiveThreshold) Adapt(thresholds *Thresholds, utilization float64) {
	c := p.params.Class
	thresholds[c] = AdaptThreshold(thresholds[c], utilization, p.params)
}

func (p *AdaptiveThreshold) Decide(state State, req FlowRequest, airtime float64) Decision {
	return thresholdRule(state, req, airtime)
}

// ValidAdmissionPolicies is the set of recognized admission policy names.
// Shared by Config.Validate and NewAdmissionPolicy.
var ValidAdmissionPolicies = map[string]bool{"": true, "static": true, "adaptive": true}

// IsValidAdmissionPolicy reports whether name is a recognized policy.
func IsValidAdmissionPolicy(name string) bool {
	return ValidAdmissionPolicies[name]
}

// NewAdmissionPolicy creates an admission policy by name.
// An empty string defaults to static. params is used only by adaptive.
// Panics on unrecognized names; validate with IsValidAdmissionPolicy first.
func NewAdmissionPolicy(name string, params AdaptiveParams) AdmissionPolicy {
	if !IsValidAdmissionPolicy(name) {
		panic(fmt.Sprintf("unknown admission policy %q", name))
	}
	switch name {
	case "", "static":
		return &StaticThreshold{}
	case "adaptive":
		return NewAdaptiveThreshold(params)
	default:
		panic(fmt.Sprintf("unhandled admission policy %q", name))
	}
}
