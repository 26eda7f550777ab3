// Package observe exports admission engine events as Prometheus metrics.
package observe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/r04nx/soft-CAC/sim/cac"
)

// Outcome label values of cac_requests_total.
const (
	OutcomeAdmitted = "admitted"
	OutcomeBlocked  = "blocked"
)

// PromObserver implements cac.Observer on top of Prometheus collectors.
// One observer may be shared by many engines; series are labeled by engine name.
type PromObserver struct {
	requests    *prometheus.CounterVec
	releases    *prometheus.CounterVec
	utilization *prometheus.GaugeVec
	thresholds  *prometheus.GaugeVec
	rxBytes     *prometheus.CounterVec
	delay       *prometheus.HistogramVec
}

var _ cac.Observer = (*PromObserver)(nil)

// NewPromObserver creates the collectors and registers them with reg.
// Panics if any collector is already registered.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	p := &PromObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cac_requests_total",
			Help: "Admission requests by engine, traffic class and outcome.",
		}, []string{"engine", "class", "outcome"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cac_releases_total",
			Help: "Flows released by engine and traffic class.",
		}, []string{"engine", "class"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cac_utilization_ratio",
			Help: "Committed airtime over live flows.",
		}, []string{"engine"}),
		thresholds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cac_threshold_ratio",
			Help: "Utilization ceiling applied at the last decision for a class.",
		}, []string{"engine", "class"}),
		rxBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cac_received_bytes_total",
			Help: "Bytes delivered on admitted flows.",
		}, []string{"engine", "class"}),
		delay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cac_packet_delay_seconds",
			Help:    "Per-packet delivery delay of admitted flows.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"class"}),
	}
	reg.MustRegister(p.requests, p.releases, p.utilization, p.thresholds, p.rxBytes, p.delay)
	return p
}

func (p *PromObserver) ObserveDecision(engine string, d cac.Decision, utilization float64) {
	outcome := OutcomeBlocked
	if d.Admit {
		outcome = OutcomeAdmitted
	}
	class := d.Class.String()
	p.requests.WithLabelValues(engine, class, outcome).Inc()
	p.thresholds.WithLabelValues(engine, class).Set(d.Threshold)
	p.utilization.WithLabelValues(engine).Set(utilization)
}

func (p *PromObserver) ObserveRelease(engine string, rec cac.FlowRecord, utilization float64) {
	p.releases.WithLabelValues(engine, rec.Class.String()).Inc()
	p.utilization.WithLabelValues(engine).Set(utilization)
}

func (p *PromObserver) ObserveDelivery(engine string, class cac.TrafficClass, bytes int, delay float64) {
	p.rxBytes.WithLabelValues(engine, class.String()).Add(float64(bytes))
	p.delay.WithLabelValues(class.String()).Observe(delay)
}
