package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
)

// PromSink records orchestrator events in Prometheus metrics.
type PromSink struct {
	mutations *prometheus.CounterVec
	sweeps    *prometheus.HistogramVec
	bridge    prometheus.Gauge
	ready     prometheus.Gauge
}

// NewPromSink registers control metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "control_mutations_total",
		Help: "Total number of state-affecting requests by operation and outcome",
	}, []string{"operation", "portal", "outcome"})
	sweeps := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Duration of parameter sweeps",
		Buckets: prometheus.DefBuckets,
	}, []string{"approved"})
	bridge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_strength",
		Help: "Last computed bridge strength",
	})
	ready := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transport_ready",
		Help: "Whether both portals are locked (1) or not (0)",
	})

	if err := reg.Register(mutations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			mutations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sweeps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sweeps = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bridge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bridge = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(ready); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			ready = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{mutations: mutations, sweeps: sweeps, bridge: bridge, ready: ready}, nil
}

// RecordMutation increments the mutation counter.
func (s *PromSink) RecordMutation(ev coremetrics.MutationEvent) error {
	portal := ""
	if ev.Portal != 0 {
		portal = strconv.Itoa(int(ev.Portal))
	}
	s.mutations.WithLabelValues(ev.Operation, portal, ev.Outcome).Inc()
	return nil
}

// RecordSweep observes the sweep duration histogram.
func (s *PromSink) RecordSweep(ev coremetrics.SweepEvent) error {
	s.sweeps.WithLabelValues(strconv.FormatBool(ev.Approved)).Observe(ev.Duration.Seconds())
	return nil
}

// RecordSnapshot updates the derived-state gauges.
func (s *PromSink) RecordSnapshot(snap model.SimulationSnapshot) error {
	s.bridge.Set(snap.BridgeStrength)
	if snap.TransportReady {
		s.ready.Set(1)
	} else {
		s.ready.Set(0)
	}
	return nil
}
