package trace

// ClassSummary aggregates decisions for one traffic class.
type ClassSummary struct {
	Admitted      int     `json:"admitted"`
	Rejected      int     `json:"rejected"`
	MeanThreshold float64 `json:"mean_threshold"`
	MinThreshold  float64 `json:"min_threshold"`
	MaxThreshold  float64 `json:"max_threshold"`
}

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	TotalDecisions  int                     `json:"total_decisions"`
	AdmittedCount   int                     `json:"admitted_count"`
	RejectedCount   int                     `json:"rejected_count"`
	ReleaseCount    int                     `json:"release_count"`
	PeakUtilization float64                 `json:"peak_utilization"`
	Classes         map[string]ClassSummary `json:"classes"` // class name → summary
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		Classes: make(map[string]ClassSummary),
	}
	if dt == nil {
		return summary
	}
	dt.mu.Lock()
	defer dt.mu.Unlock()

	summary.TotalDecisions = len(dt.Admissions)
	summary.ReleaseCount = len(dt.Releases)
	thresholdSums := make(map[string]float64)
	for _, a := range dt.Admissions {
		cs, seen := summary.Classes[a.Class]
		if !seen {
			cs.MinThreshold = a.Threshold
			cs.MaxThreshold = a.Threshold
		}
		if a.Admitted {
			summary.AdmittedCount++
			cs.Admitted++
		} else {
			summary.RejectedCount++
			cs.Rejected++
		}
		cs.MinThreshold = min(cs.MinThreshold, a.Threshold)
		cs.MaxThreshold = max(cs.MaxThreshold, a.Threshold)
		thresholdSums[a.Class] += a.Threshold
		summary.Classes[a.Class] = cs
		if a.Utilization > summary.PeakUtilization {
			summary.PeakUtilization = a.Utilization
		}
	}
	for class, cs := range summary.Classes {
		cs.MeanThreshold = thresholdSums[class] / float64(cs.Admitted+cs.Rejected)
		summary.Classes[class] = cs
	}
	return summary
}
