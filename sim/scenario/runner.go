package scenario

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/sirupsen/logrus"

	"github.com/r04nx/soft-CAC/sim/cac"
	"github.com/r04nx/soft-CAC/sim/trace"
)

// minHeadroom bounds the queueing factor 1/(1-utilization) when a ceiling of
// 1.0 lets utilization approach saturation.
const minHeadroom = 0.01

// Runner owns the engines and event manager of one scenario run.
type Runner struct {
	spec     *Spec
	rng      *PartitionedRNG
	evtMgr   *evtm.EventManager
	aps      []*apState
	overlay  *cac.Bundle
	trace    *trace.DecisionTrace
	observer cac.Observer

	admissions []AdmissionRow
}

// RunnerOption customizes a Runner at construction.
type RunnerOption func(*Runner)

// WithOverlay applies b on top of every access point's own config bundle.
func WithOverlay(b *cac.Bundle) RunnerOption {
	return func(r *Runner) { r.overlay = b }
}

// WithTrace records every engine decision into t.
func WithTrace(t *trace.DecisionTrace) RunnerOption {
	return func(r *Runner) { r.trace = t }
}

// WithObserver forwards every engine event to o.
func WithObserver(o cac.Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

type apState struct {
	id     string
	engine *cac.Engine
	phy    cac.PhyConfig

	txPackets   uint64
	lostPackets uint64
}

type flowState struct {
	ap       *apState
	group    FlowGroup
	class    cac.TrafficClass
	rng      *rand.Rand
	id       cac.FlowID
	burstEnd float64
	released bool
}

type pendingFlow struct {
	ap    *apState
	group FlowGroup
	class cac.TrafficClass
	rng   *rand.Rand
}

// NewRunner builds one engine per access point and schedules every flow
// arrival.
func NewRunner(spec *Spec, opts ...RunnerOption) (*Runner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		spec:       spec,
		rng:        NewPartitionedRNG(NewSimulationKey(spec.Seed)),
		evtMgr:     evtm.New(),
		admissions: make([]AdmissionRow, 0),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, apSpec := range spec.AccessPoints {
		cfg, err := apSpec.Config.Apply(cac.DefaultConfig())
		if err != nil {
			return nil, err
		}
		if r.overlay != nil {
			if cfg, err = r.overlay.Apply(cfg); err != nil {
				return nil, err
			}
		}
		engineOpts := []cac.Option{cac.WithName(apSpec.ID)}
		if r.trace != nil {
			engineOpts = append(engineOpts, cac.WithTrace(r.trace))
		}
		if r.observer != nil {
			engineOpts = append(engineOpts, cac.WithObserver(r.observer))
		}
		engine, err := cac.NewEngine(cfg, engineOpts...)
		if err != nil {
			return nil, err
		}
		ap := &apState{id: apSpec.ID, engine: engine, phy: cfg.Phy}
		r.aps = append(r.aps, ap)

		for gi, g := range apSpec.Flows {
			class, _ := cac.ParseTrafficClass(g.Class)
			for i := 0; i < g.Count; i++ {
				pf := &pendingFlow{
					ap:    ap,
					group: g,
					class: class,
					rng:   r.rng.ForSubsystem(SubsystemFlow(ap.id, gi, i)),
				}
				at := g.StartS + float64(i)*g.StaggerS
				r.evtMgr.Schedule(r, pf, arrive, vrtime.SecondsToTime(at))
			}
		}
	}
	return r, nil
}

// Run executes events up to the horizon and returns the collected results.
func (r *Runner) Run() *Result {
	logrus.Infof("Starting scenario: %d access point(s), horizon=%.1fs, seed=%d",
		len(r.aps), r.spec.HorizonS, r.spec.Seed)
	r.evtMgr.Run(r.spec.HorizonS)

	res := &Result{
		RunID:        uuid.NewString(),
		Seed:         r.spec.Seed,
		HorizonS:     r.spec.HorizonS,
		AccessPoints: make([]APResult, 0, len(r.aps)),
		Admissions:   r.admissions,
	}
	for _, ap := range r.aps {
		apr := APResult{
			ID:          ap.id,
			Snapshot:    ap.engine.Snapshot(),
			TxPackets:   ap.txPackets,
			LostPackets: ap.lostPackets,
		}
		if ap.txPackets > 0 {
			apr.LossRate = float64(ap.lostPackets) / float64(ap.txPackets)
		}
		res.AccessPoints = append(res.AccessPoints, apr)
		logrus.Infof("[%s] admitted=%d blocked=%d blocking=%.4f utilization=%.4f",
			ap.id, apr.Snapshot.AdmittedTotal, apr.Snapshot.Blocked,
			apr.Snapshot.BlockingProbability, apr.Snapshot.Utilization)
	}
	if r.trace != nil {
		res.Trace = trace.Summarize(r.trace)
	}
	return res
}

// Engine returns the engine of an access point, or nil.
func (r *Runner) Engine(apID string) *cac.Engine {
	for _, ap := range r.aps {
		if ap.id == apID {
			return ap.engine
		}
	}
	return nil
}

// arrive requests admission for a new flow and, on admit, starts its packets
// and schedules its departure.
func arrive(evtMgr *evtm.EventManager, context any, data any) any {
	r := context.(*Runner)
	pf := data.(*pendingFlow)
	now := evtMgr.CurrentSeconds()

	req := cac.FlowRequest{
		Class:           pf.class,
		PacketSizeBytes: pf.group.PacketSize,
		DataRateBps:     pf.group.AdmissionRate(),
	}
	d, id, err := pf.ap.engine.Request(req, now)
	if err != nil {
		// Validate rules these out for parsed scenarios.
		logrus.Errorf("[%s] rejected malformed request: %v", pf.ap.id, err)
		return nil
	}
	r.admissions = append(r.admissions, AdmissionRow{
		AP:              pf.ap.id,
		FlowID:          id,
		Class:           pf.class,
		Time:            now,
		Admitted:        d.Admit,
		RequiredAirtime: d.RequiredAirtime,
		Threshold:       d.Threshold,
		Utilization:     d.Utilization,
	})
	if !d.Admit {
		return nil
	}

	f := &flowState{ap: pf.ap, group: pf.group, class: pf.class, rng: pf.rng, id: id}
	if f.group.DutyCycle < 1 {
		f.burstEnd = now + f.rng.ExpFloat64()*f.group.OnMeanS
	}
	evtMgr.Schedule(r, f, sendPacket, vrtime.SecondsToTime(0))
	if f.group.HoldingS > 0 {
		evtMgr.Schedule(r, f, depart, vrtime.SecondsToTime(f.group.HoldingS))
	}
	return nil
}

// sendPacket transmits one packet of an admitted flow and schedules the next.
// On/off flows sleep through an exponential off period when a burst ends.
func sendPacket(evtMgr *evtm.EventManager, context any, data any) any {
	r := context.(*Runner)
	f := data.(*flowState)
	if f.released {
		return nil
	}
	now := evtMgr.CurrentSeconds()
	g := f.group

	if g.DutyCycle < 1 && now >= f.burstEnd {
		offMean := g.OnMeanS * (1 - g.DutyCycle) / g.DutyCycle
		off := f.rng.ExpFloat64() * offMean
		f.burstEnd = now + off + f.rng.ExpFloat64()*g.OnMeanS
		evtMgr.Schedule(r, f, sendPacket, vrtime.SecondsToTime(off))
		return nil
	}

	size := g.PacketSize
	if g.SizeJitter > 0 {
		variation := 1 + g.SizeJitter*(2*f.rng.Float64()-1)
		size = max(1, int(float64(g.PacketSize)*variation))
	}

	engine := f.ap.engine
	util := engine.Utilization()
	f.ap.txPackets++
	if f.rng.Float64() < cac.SimulatedErrorRate(util) {
		f.ap.lostPackets++
	} else {
		headroom := math.Max(minHeadroom, 1-util)
		jitter := 0.5 + f.rng.Float64()
		delay := cac.PerPacketTime(size, f.class, f.ap.phy) / headroom * jitter
		engine.RecordDelivery(f.id, size, delay, now+delay)
	}

	interval := float64(size*8) / g.DataRate
	evtMgr.Schedule(r, f, sendPacket, vrtime.SecondsToTime(interval))
	return nil
}

// depart releases a flow at the end of its holding time.
func depart(evtMgr *evtm.EventManager, context any, data any) any {
	f := data.(*flowState)
	f.released = true
	f.ap.engine.Release(f.id, evtMgr.CurrentSeconds())
	return nil
}
