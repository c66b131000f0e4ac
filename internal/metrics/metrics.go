// Package metrics exposes Prometheus instrumentation for evapotranspiration
// computations and the REST API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = prometheus.ExponentialBuckets(0.0005, 2, 12)

// Metrics holds the collectors of one process
type Metrics struct {
	registry *prometheus.Registry

	Computations *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Days         *prometheus.CounterVec
	Requests     *prometheus.CounterVec
}

// New creates a registry with the Go runtime and process collectors and the
// evapo collectors registered on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evapo",
			Name:      "computations_total",
			Help:      "Evapotranspiration computations by method and outcome.",
		}, []string{"method", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evapo",
			Name:      "computation_duration_seconds",
			Help:      "Time spent evaluating one method over a series.",
			Buckets:   durationBuckets,
		}, []string{"method"}),
		Days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evapo",
			Name:      "days_computed_total",
			Help:      "Days of evapotranspiration produced by method.",
		}, []string{"method"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evapo",
			Name:      "http_requests_total",
			Help:      "REST API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(m.Computations, m.Duration, m.Days, m.Requests)
	return m
}

// ObserveComputation records the outcome of one method evaluation
func (m *Metrics) ObserveComputation(method string, days int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Computations.WithLabelValues(method, outcome).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err == nil {
		m.Days.WithLabelValues(method).Add(float64(days))
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
