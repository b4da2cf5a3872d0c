// Package metrics exposes Prometheus instrumentation for discovery runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "contact_discovery"

// Recorder records pipeline activity. A nil *Recorder is valid and records nothing.
type Recorder struct {
	fetches         *prometheus.CounterVec
	contacts        *prometheus.CounterVec
	renderFallbacks prometheus.Counter
	runDuration     prometheus.Histogram
	runs            *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Page fetches by tier and outcome.",
		}, []string{"tier", "outcome"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_total",
			Help:      "Normalized contacts returned, by type.",
		}, []string{"type"}),
		renderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_fallbacks_total",
			Help:      "Runs that fell back to the headless-browser tier.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of discovery runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Discovery runs by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{r.fetches, r.contacts, r.renderFallbacks, r.runDuration, r.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Fetch records one fetch attempt.
func (r *Recorder) Fetch(tier string, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.fetches.WithLabelValues(tier, outcome).Inc()
}

// Contacts records the types of the contacts a run produced.
func (r *Recorder) Contacts(types []string) {
	if r == nil {
		return
	}
	for _, t := range types {
		r.contacts.WithLabelValues(t).Inc()
	}
}

// RenderFallback records that a run opened the render tier.
func (r *Recorder) RenderFallback() {
	if r == nil {
		return
	}
	r.renderFallbacks.Inc()
}

// Run records a finished run. result is "found", "empty" or "error".
func (r *Recorder) Run(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(result).Inc()
	r.runDuration.Observe(elapsed.Seconds())
}
