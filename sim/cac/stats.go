package cac

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// FlowStats accumulates delivery observations for one admitted flow.
type FlowStats struct {
	Class         TrafficClass `json:"class"`
	RxPackets     uint64       `json:"rx_packets"`
	RxBytes       uint64       `json:"rx_bytes"`
	DelaySum      float64      `json:"delay_sum_s"`
	DelaySamples  uint64       `json:"delay_samples"`
	MinDelay      float64      `json:"min_delay_s"`
	MaxDelay      float64      `json:"max_delay_s"`
	FirstDelivery float64      `json:"first_delivery_s"`
	LastDelivery  float64      `json:"last_delivery_s"`
	Delays        []float64    `json:"-"` // append-only, in arrival order
	Released      bool         `json:"released"`
}

// Derived holds metrics computed from FlowStats.
type Derived struct {
	MeanDelay     float64 `json:"mean_delay_s"`
	MinDelay      float64 `json:"min_delay_s"`
	MaxDelay      float64 `json:"max_delay_s"`
	P50Delay      float64 `json:"p50_delay_s"`
	P95Delay      float64 `json:"p95_delay_s"`
	P99Delay      float64 `json:"p99_delay_s"`
	ThroughputBps float64 `json:"throughput_bps"`
}

// Collector owns per-flow statistics. Entries are opened on admission and
// closed on release; closed entries keep their data for reporting but accept
// no further deliveries.
type Collector struct {
	flows map[FlowID]*FlowStats
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{flows: make(map[FlowID]*FlowStats)}
}

func (c *Collector) open(id FlowID, class TrafficClass) {
	c.flows[id] = &FlowStats{Class: class, Delays: make([]float64, 0)}
}

func (c *Collector) close(id FlowID) {
	if fs, ok := c.flows[id]; ok {
		fs.Released = true
	}
}

// RecordDelivery adds one received packet to a live flow's statistics.
// Deliveries for unknown or released flows are ignored and return false,
// tolerating packets still in flight when a flow is released. A negative byte
// count or a negative or NaN delay is dropped the same way.
func (c *Collector) RecordDelivery(id FlowID, bytes int, delay, now float64) bool {
	if bytes < 0 || !(delay >= 0) {
		return false
	}
	fs, ok := c.flows[id]
	if !ok || fs.Released {
		return false
	}
	if fs.RxPackets == 0 {
		fs.FirstDelivery = now
		fs.MinDelay = delay
		fs.MaxDelay = delay
	}
	fs.RxPackets++
	fs.RxBytes += uint64(bytes)
	fs.DelaySum += delay
	fs.DelaySamples++
	fs.MinDelay = min(fs.MinDelay, delay)
	fs.MaxDelay = max(fs.MaxDelay, delay)
	fs.LastDelivery = now
	fs.Delays = append(fs.Delays, delay)
	return true
}

// Get returns a copy of the statistics of a flow, live or released.
func (c *Collector) Get(id FlowID) (FlowStats, bool) {
	fs, ok := c.flows[id]
	if !ok {
		return FlowStats{}, false
	}
	cp := *fs
	cp.Delays = slices.Clone(fs.Delays)
	return cp, true
}

// IDs returns every flow ID with statistics, ascending.
func (c *Collector) IDs() []FlowID {
	ids := make([]FlowID, 0, len(c.flows))
	for id := range c.flows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Derive computes mean delay, percentiles and throughput.
// Throughput is zero unless the delivery interval is positive.
func Derive(fs FlowStats) Derived {
	var d Derived
	if fs.DelaySamples > 0 {
		d.MeanDelay = fs.DelaySum / float64(fs.DelaySamples)
		d.MinDelay = fs.MinDelay
		d.MaxDelay = fs.MaxDelay
	}
	if len(fs.Delays) > 0 {
		sorted := slices.Clone(fs.Delays)
		slices.Sort(sorted)
		d.P50Delay = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		d.P95Delay = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		d.P99Delay = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	}
	if interval := fs.LastDelivery - fs.FirstDelivery; interval > 0 {
		d.ThroughputBps = float64(fs.RxBytes) * 8 / interval
	}
	return d
}
