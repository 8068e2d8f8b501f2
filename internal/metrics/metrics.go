// Package metrics exposes prometheus instrumentation for the routing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the engine's prometheus collectors. A nil *Recorder is
// valid and records nothing, so callers never need to guard their calls.
type Recorder struct {
	routes    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	probes    *prometheus.CounterVec
	evictions prometheus.Counter
	liveGauge prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loadrouter",
			Name:      "routed_items_total",
			Help:      "Items routed, by strategy and destination.",
		}, []string{"strategy", "destination"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loadrouter",
			Name:      "route_failures_total",
			Help:      "Items that could not be routed, by reason.",
		}, []string{"reason"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loadrouter",
			Name:      "probe_results_total",
			Help:      "Health probe outcomes, by destination and result.",
		}, []string{"destination", "result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loadrouter",
			Name:      "affinity_evictions_total",
			Help:      "Affinity buckets removed by the TTL sweep.",
		}),
		liveGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loadrouter",
			Name:      "live_destinations",
			Help:      "Size of the live set observed by the last routing call.",
		}),
	}

	for _, c := range []prometheus.Collector{r.routes, r.failures, r.probes, r.evictions, r.liveGauge} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveRoute records a successfully routed item
func (r *Recorder) ObserveRoute(strategy, destination string) {
	if r == nil {
		return
	}
	r.routes.WithLabelValues(strategy, destination).Inc()
}

// ObserveFailure records a routing failure
func (r *Recorder) ObserveFailure(reason string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(reason).Inc()
}

// ObserveProbe records one probe outcome for a destination
func (r *Recorder) ObserveProbe(destination string, alive bool) {
	if r == nil {
		return
	}
	result := "down"
	if alive {
		result = "up"
	}
	r.probes.WithLabelValues(destination, result).Inc()
}

// ObserveEvictions records buckets removed by one sweep
func (r *Recorder) ObserveEvictions(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.evictions.Add(float64(n))
}

// SetLive records the live-set size seen by a routing call
func (r *Recorder) SetLive(n int) {
	if r == nil {
		return
	}
	r.liveGauge.Set(float64(n))
}
