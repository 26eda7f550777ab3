package cac

import "golang.org/x/exp/slices"

// FlowID identifies an admitted flow within one engine. IDs start at 1 and
// are never reused while the engine lives.
type FlowID uint64

// FlowRecord is the committed reservation of an admitted flow. It is the sole
// source of truth for how much airtime the flow holds.
type FlowRecord struct {
	ID              FlowID         `json:"id"`
	Class           TrafficClass   `json:"class"`
	AccessCategory  AccessCategory `json:"access_category"`
	Priority        int            `json:"priority"`
	PacketSizeBytes int            `json:"packet_size_bytes"`
	DataRateBps     float64        `json:"data_rate_bps"`
	RequiredAirtime float64        `json:"required_airtime"`
	AdmittedAt      float64        `json:"admitted_at"` // caller logical seconds
}

// Registry owns the admitted flows and the utilization accumulator.
// Not safe for concurrent use; Engine serializes access.
type Registry struct {
	nextID      FlowID
	records     map[FlowID]FlowRecord
	live        []FlowID // ascending
	utilization float64
	stats       *Collector
}

// NewRegistry creates an empty registry whose first ID will be 1.
func NewRegistry() *Registry {
	return &Registry{
		nextID:  1,
		records: make(map[FlowID]FlowRecord),
		live:    make([]FlowID, 0),
		stats:   NewCollector(),
	}
}

// Admit commits the reservation described by a successful decision and returns
// the new flow ID. Returns (0, false) when the decision did not admit.
func (r *Registry) Admit(d Decision, req FlowRequest, now float64) (FlowID, bool) {
	if !d.Admit {
		return 0, false
	}
	id := r.nextID
	r.nextID++
	r.records[id] = FlowRecord{
		ID:              id,
		Class:           req.Class,
		AccessCategory:  req.Class.AccessCategory(),
		Priority:        req.Class.Priority(),
		PacketSizeBytes: req.PacketSizeBytes,
		DataRateBps:     req.DataRateBps,
		RequiredAirtime: d.RequiredAirtime,
		AdmittedAt:      now,
	}
	// IDs are allocated in increasing order, so appending keeps live sorted
	// and the running sum equals the left-to-right sum over live.
	r.live = append(r.live, id)
	r.utilization += d.RequiredAirtime
	r.stats.open(id, req.Class)
	return id, true
}

// Release removes a flow and returns its airtime to the pool. Unknown or
// already-released IDs are a no-op and return false.
func (r *Registry) Release(id FlowID) bool {
	if _, ok := r.records[id]; !ok {
		return false
	}
	delete(r.records, id)
	if idx, found := slices.BinarySearch(r.live, id); found {
		r.live = slices.Delete(r.live, idx, idx+1)
	}
	r.utilization = r.sumLive()
	r.stats.close(id)
	return true
}

// sumLive recomputes utilization in ID order so release leaves no residue.
func (r *Registry) sumLive() float64 {
	sum := 0.0
	for _, id := range r.live {
		sum += r.records[id].RequiredAirtime
	}
	return sum
}

// Utilization returns the sum of committed airtime over live flows.
func (r *Registry) Utilization() float64 { return r.utilization }

// LiveCount returns the number of admitted, unreleased flows.
func (r *Registry) LiveCount() int { return len(r.live) }

// Lookup returns the record of a live flow.
func (r *Registry) Lookup(id FlowID) (FlowRecord, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Flows returns a snapshot of live records ordered by ID.
func (r *Registry) Flows() []FlowRecord {
	out := make([]FlowRecord, 0, len(r.live))
	for _, id := range r.live {
		out = append(out, r.records[id])
	}
	return out
}

// Stats returns the collector fed by this registry's flows.
func (r *Registry) Stats() *Collector { return r.stats }
