package cac

import (
	"fmt"
	"io"
)

// FlowReport pairs a flow's statistics with the metrics derived from them.
// Record is nil once the flow has been released.
type FlowReport struct {
	ID      FlowID       `json:"id"`
	Class   TrafficClass `json:"class"`
	Record  *FlowRecord  `json:"record,omitempty"`
	Stats   FlowStats    `json:"stats"`
	Derived Derived      `json:"derived"`
}

// Snapshot is an immutable summary of an engine, produced for reporting and
// export. Nothing in it aliases engine state.
type Snapshot struct {
	Engine              string                   `json:"engine"`
	Policy              string                   `json:"policy"`
	Thresholds          map[string]float64       `json:"thresholds"`
	Utilization         float64                  `json:"utilization"`
	TotalRequests       uint64                   `json:"total_requests"`
	AdmittedTotal       uint64                   `json:"admitted_total"`
	LiveFlows           int                      `json:"live_flows"`
	Blocked             uint64                   `json:"blocked"`
	BlockingProbability float64                  `json:"blocking_probability"`
	Classes             map[string]ClassCounters `json:"classes"`
	Flows               []FlowReport             `json:"flows"`
}

// Snapshot captures the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Engine:              e.name,
		Policy:              e.policy.Name(),
		Thresholds:          e.thresholds.ByName(),
		Utilization:         e.registry.Utilization(),
		TotalRequests:       e.totalRequests,
		LiveFlows:           e.registry.LiveCount(),
		Blocked:             e.blocked,
		BlockingProbability: e.blockingProbabilityLocked(),
		Classes:             make(map[string]ClassCounters, numTrafficClasses),
		Flows:               make([]FlowReport, 0),
	}
	for _, class := range AllTrafficClasses() {
		s.Classes[class.String()] = e.classes[class]
		s.AdmittedTotal += e.classes[class].Admitted
	}
	collector := e.registry.Stats()
	for _, id := range collector.IDs() {
		fs, _ := collector.Get(id)
		fr := FlowReport{ID: id, Class: fs.Class, Stats: fs, Derived: Derive(fs)}
		if rec, ok := e.registry.Lookup(id); ok {
			fr.Record = &rec
		}
		s.Flows = append(s.Flows, fr)
	}
	return s
}

// Print writes a human-readable summary of the snapshot.
func (s Snapshot) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Airtime CAC [%s] ===\n", s.Engine)
	fmt.Fprintf(w, "Policy               : %s\n", s.Policy)
	for _, class := range AllTrafficClasses() {
		c := s.Classes[class.String()]
		fmt.Fprintf(w, "Threshold %-10s : %.2f (requests=%d admitted=%d blocked=%d)\n",
			class, s.Thresholds[class.String()], c.Requests, c.Admitted, c.Blocked)
	}
	fmt.Fprintf(w, "Utilization          : %.4f\n", s.Utilization)
	fmt.Fprintf(w, "Total Requests       : %d\n", s.TotalRequests)
	fmt.Fprintf(w, "Admitted Flows       : %d (live %d)\n", s.AdmittedTotal, s.LiveFlows)
	fmt.Fprintf(w, "Blocked Flows        : %d\n", s.Blocked)
	fmt.Fprintf(w, "Blocking Probability : %.4f\n", s.BlockingProbability)
	for _, fr := range s.Flows {
		fmt.Fprintf(w, "Flow %d (%s):\n", fr.ID, fr.Class)
		fmt.Fprintf(w, "  RX Packets : %d\n", fr.Stats.RxPackets)
		fmt.Fprintf(w, "  RX Bytes   : %d\n", fr.Stats.RxBytes)
		fmt.Fprintf(w, "  Throughput : %.3f Mbps\n", fr.Derived.ThroughputBps/1e6)
		fmt.Fprintf(w, "  Avg Delay  : %.3f ms\n", fr.Derived.MeanDelay*1000)
		fmt.Fprintf(w, "  Min Delay  : %.3f ms\n", fr.Derived.MinDelay*1000)
		fmt.Fprintf(w, "  Max Delay  : %.3f ms\n", fr.Derived.MaxDelay*1000)
	}
}
