// Package metrics defines the Prometheus collectors for the suggest service and exposes an
// HTTP handler for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SuggestQueriesTotal *prometheus.CounterVec
	SuggestLatency      *prometheus.HistogramVec
	BuildsTotal         *prometheus.CounterVec
	BuildDuration       *prometheus.HistogramVec
	AutomatonBytes      *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing nil uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		SuggestQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggest_queries_total",
				Help: "Total suggest queries by suggest type and result (hit, zero_result, error).",
			},
			[]string{"kind", "result"},
		),
		SuggestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suggest_latency_seconds",
				Help:    "Suggest query latency in seconds, including lazy builds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"kind"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggest_automaton_builds_total",
				Help: "Total automaton builds by suggester kind and result (ok, error).",
			},
			[]string{"kind", "result"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suggest_automaton_build_seconds",
				Help:    "Automaton build latency in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"kind"},
		),
		AutomatonBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "suggest_automaton_bytes",
				Help: "Size in bytes of the current automaton per index, field label and shard.",
			},
			[]string{"index", "field", "shard"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SuggestQueriesTotal,
		m.SuggestLatency,
		m.BuildsTotal,
		m.BuildDuration,
		m.AutomatonBytes,
	)

	return m
}

// Handler returns an HTTP handler that serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveQuery(kind string, took time.Duration, results int, err error) {
	if m == nil {
		return
	}
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case results == 0:
		result = "zero_result"
	}
	m.SuggestQueriesTotal.WithLabelValues(kind, result).Inc()
	m.SuggestLatency.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) ObserveBuild(kind string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BuildsTotal.WithLabelValues(kind, result).Inc()
	m.BuildDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) SetAutomatonBytes(index, label string, shard, size int) {
	if m == nil {
		return
	}
	m.AutomatonBytes.WithLabelValues(index, label, strconv.Itoa(shard)).Set(float64(size))
}

// ForgetIndex drops the per-shard gauges of a deleted index.
func (m *Metrics) ForgetIndex(index string) {
	if m == nil {
		return
	}
	m.AutomatonBytes.DeletePartialMatch(prometheus.Labels{"index": index})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}
