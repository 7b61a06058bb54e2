// Package metrics holds the Prometheus instruments of the viewport core.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for gomol
type Metrics struct {
	registry        *prometheus.Registry
	transitions     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	upserts         prometheus.Counter
	rejected        prometheus.Counter
	loadedViewports prometheus.Gauge
}

// New creates and registers the gomol metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gomol_load_transitions_total",
		Help: "Completed load pipeline transitions by target state",
	}, []string{"state"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gomol_load_failures_total",
		Help: "Failed load pipeline stages",
	}, []string{"stage"})
	upserts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gomol_representation_upserts_total",
		Help: "Representation updates applied to the engine",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gomol_rejected_requests_total",
		Help: "Requests rejected because a precondition was not met",
	})
	loadedViewports := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gomol_loaded_viewports",
		Help: "Number of viewports showing a structure",
	})

	registry.MustRegister(transitions, failures, upserts, rejected, loadedViewports)

	return &Metrics{
		registry:        registry,
		transitions:     transitions,
		failures:        failures,
		upserts:         upserts,
		rejected:        rejected,
		loadedViewports: loadedViewports,
	}
}

// IncTransition counts a transition that reached state
func (m *Metrics) IncTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

// IncFailure counts a failed stage
func (m *Metrics) IncFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

// IncUpserts counts a representation upsert
func (m *Metrics) IncUpserts() {
	if m == nil {
		return
	}
	m.upserts.Inc()
}

// IncRejected counts a precondition rejection
func (m *Metrics) IncRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// SetLoadedViewports sets the loaded viewports gauge
func (m *Metrics) SetLoadedViewports(n int) {
	if m == nil {
		return
	}
	m.loadedViewports.Set(float64(n))
}

// Handler serves the metrics. updateGauges runs before each scrape.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
