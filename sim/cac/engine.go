package cac

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/r04nx/soft-CAC/sim/trace"
)

// Observer receives engine events after they are committed. Implementations
// must not call back into the engine.
type Observer interface {
	ObserveDecision(engine string, d Decision, utilization float64)
	ObserveRelease(engine string, rec FlowRecord, utilization float64)
	ObserveDelivery(engine string, class TrafficClass, bytes int, delay float64)
}

// ClassCounters are the per-class request outcomes since engine creation.
type ClassCounters struct {
	Requests uint64 `json:"requests"`
	Admitted uint64 `json:"admitted"`
	Blocked  uint64 `json:"blocked"`
}

// Engine is one admission controller, typically one per access point.
// Every public method holds the engine lock, so a decision and the registry
// commit acting on it form one atomic unit.
type Engine struct {
	mu sync.Mutex

	name       string
	cfg        Config
	policy     AdmissionPolicy
	thresholds Thresholds
	registry   *Registry

	totalRequests uint64
	blocked       uint64
	classes       [numTrafficClasses]ClassCounters

	trace    *trace.DecisionTrace
	observer Observer
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithName labels the engine in logs, traces and metrics.
func WithName(name string) Option {
	return func(e *Engine) { e.name = name }
}

// WithTrace records every admission and release into t.
func WithTrace(t *trace.DecisionTrace) Option {
	return func(e *Engine) { e.trace = t }
}

// WithObserver forwards committed events to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine validates cfg and returns an empty engine.
// Errors wrap ErrInvalidConfiguration.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		name:       "ap",
		cfg:        cfg,
		policy:     NewAdmissionPolicy(cfg.Policy, cfg.Adaptive),
		thresholds: cfg.Thresholds,
		registry:   NewRegistry(),
	}
	if cfg.Policy == "adaptive" {
		e.thresholds[cfg.Adaptive.Class] = cfg.Adaptive.Initial
	}
	for _, opt := range opts {
		opt(e)
	}
	warnGuardInterval(e.name, cfg.Phy)
	logrus.Debugf("[%s] engine created: policy=%s thresholds=%v phy=%+v",
		e.name, e.policy.Name(), e.thresholds.ByName(), cfg.Phy)
	return e, nil
}

// Name returns the engine label.
func (e *Engine) Name() string { return e.name }

// Request runs the full admission sequence for one flow: validate, adapt the
// threshold table, price the flow, decide and, on admit, commit. The returned
// FlowID is 0 when the flow was rejected. Only invalid requests return an error.
func (e *Engine) Request(req FlowRequest, now float64) (Decision, FlowID, error) {
	if err := req.Validate(); err != nil {
		return Decision{}, 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.totalRequests++
	e.classes[req.Class].Requests++
	if req.Phy != nil && !req.Phy.HEGuardInterval() {
		logrus.Debugf("[%s] %s flow overrides guard interval to %d ns (not HE)", e.name, req.Class, req.Phy.GuardIntervalNs)
	}

	before := e.thresholds.For(req.Class)
	e.policy.Adapt(&e.thresholds, e.registry.Utilization())
	if after := e.thresholds.For(req.Class); after != before {
		logrus.Debugf("[%s] %s threshold adapted %.2f -> %.2f at utilization %.4f",
			e.name, req.Class, before, after, e.registry.Utilization())
	}

	airtime := RequiredAirtime(req, e.cfg.Phy)
	d := e.policy.Decide(e.stateLocked(), req, airtime)
	id, ok := e.registry.Admit(d, req, now)
	if ok {
		e.classes[req.Class].Admitted++
		logrus.Debugf("[%s] flow %d (%s) admitted: airtime=%.5f utilization=%.4f threshold=%.2f",
			e.name, id, req.Class, airtime, e.registry.Utilization(), d.Threshold)
	} else {
		e.blocked++
		e.classes[req.Class].Blocked++
		logrus.Debugf("[%s] %s flow blocked: %s", e.name, req.Class, d.Reason)
	}

	if e.trace != nil {
		e.trace.RecordAdmission(trace.AdmissionRecord{
			Engine:          e.name,
			FlowID:          uint64(id),
			Class:           req.Class.String(),
			Clock:           now,
			Admitted:        ok,
			RequiredAirtime: airtime,
			Threshold:       d.Threshold,
			Utilization:     e.registry.Utilization(),
			Reason:          d.Reason,
		})
	}
	if e.observer != nil {
		e.observer.ObserveDecision(e.name, d, e.registry.Utilization())
	}
	return d, id, nil
}

// Decide previews the decision for req against the current state without
// adapting thresholds, counting the request or committing anything.
func (e *Engine) Decide(req FlowRequest) (Decision, error) {
	if err := req.Validate(); err != nil {
		return Decision{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy.Decide(e.stateLocked(), req, RequiredAirtime(req, e.cfg.Phy)), nil
}

// Release frees the airtime held by id. Releasing an unknown or already
// released flow changes nothing.
func (e *Engine) Release(id FlowID, now float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.registry.Lookup(id)
	if !ok || !e.registry.Release(id) {
		return
	}
	logrus.Debugf("[%s] flow %d released: utilization=%.4f", e.name, id, e.registry.Utilization())
	if e.trace != nil {
		e.trace.RecordRelease(trace.ReleaseRecord{
			Engine:      e.name,
			FlowID:      uint64(id),
			Class:       rec.Class.String(),
			Clock:       now,
			Airtime:     rec.RequiredAirtime,
			Utilization: e.registry.Utilization(),
		})
	}
	if e.observer != nil {
		e.observer.ObserveRelease(e.name, rec, e.registry.Utilization())
	}
}

// RecordDelivery adds a received packet to the flow's statistics. Unknown or
// released flows are ignored.
func (e *Engine) RecordDelivery(id FlowID, bytes int, delay, now float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.Stats().RecordDelivery(id, bytes, delay, now) {
		return
	}
	if e.observer != nil {
		if rec, ok := e.registry.Lookup(id); ok {
			e.observer.ObserveDelivery(e.name, rec.Class, bytes, delay)
		}
	}
}

// Utilization returns the committed airtime over live flows.
func (e *Engine) Utilization() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Utilization()
}

// LiveFlows returns the number of admitted, unreleased flows.
func (e *Engine) LiveFlows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.LiveCount()
}

// BlockedCount returns the number of rejected requests since creation.
func (e *Engine) BlockedCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocked
}

// TotalRequests returns the number of valid admission requests since creation.
func (e *Engine) TotalRequests() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalRequests
}

// Flows returns a snapshot of live flow records ordered by ID.
func (e *Engine) Flows() []FlowRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Flows()
}

// FlowStats returns a copy of a flow's statistics, live or released.
func (e *Engine) FlowStats(id FlowID) (FlowStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Stats().Get(id)
}

// Threshold returns the ceiling currently applied to a class.
func (e *Engine) Threshold(class TrafficClass) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds.For(class)
}

// BlockingProbability returns blocked / total requests, 0 before any request.
func (e *Engine) BlockingProbability() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blockingProbabilityLocked()
}

func (e *Engine) blockingProbabilityLocked() float64 {
	if e.totalRequests == 0 {
		return 0
	}
	return float64(e.blocked) / float64(e.totalRequests)
}

func (e *Engine) stateLocked() State {
	return State{Utilization: e.registry.Utilization(), Thresholds: e.thresholds}
}
