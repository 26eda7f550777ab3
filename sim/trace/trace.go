package trace

import "sync"

// TraceLevel selects what an engine writes into its DecisionTrace.
type TraceLevel string

const (
	// TraceLevelNone records nothing; engines get a nil trace.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions records every admit/block verdict and every release.
	TraceLevelDecisions TraceLevel = "decisions"
)

// IsValidTraceLevel reports whether level names a supported trace level.
// Matching is case-sensitive and the empty string means none.
func IsValidTraceLevel(level string) bool {
	switch TraceLevel(level) {
	case "", TraceLevelNone, TraceLevelDecisions:
		return true
	}
	return false
}

// TraceConfig is the trace section of a run.
type TraceConfig struct {
	Level TraceLevel
}

// DecisionTrace is the admission log of one run. Engines for different access
// points may append to the same trace concurrently; Admissions and Releases are
// each kept in append order.
type DecisionTrace struct {
	mu         sync.Mutex
	Config     TraceConfig
	Admissions []AdmissionRecord
	Releases   []ReleaseRecord
}

// NewDecisionTrace returns nil when config disables tracing, so engines can
// skip recording with a nil check.
func NewDecisionTrace(config TraceConfig) *DecisionTrace {
	if config.Level == "" || config.Level == TraceLevelNone {
		return nil
	}
	return &DecisionTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
		Releases:   make([]ReleaseRecord, 0),
	}
}

// RecordAdmission logs a verdict, admitted or blocked.
func (dt *DecisionTrace) RecordAdmission(record AdmissionRecord) {
	dt.mu.Lock()
	dt.Admissions = append(dt.Admissions, record)
	dt.mu.Unlock()
}

// RecordRelease logs airtime returned to the channel.
func (dt *DecisionTrace) RecordRelease(record ReleaseRecord) {
	dt.mu.Lock()
	dt.Releases = append(dt.Releases, record)
	dt.mu.Unlock()
}
