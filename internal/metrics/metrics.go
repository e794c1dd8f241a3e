package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the upstream and forward counters
const (
	OutcomeSuccess       = "success"
	OutcomeUpstreamError = "upstream_error"
	OutcomeFailure       = "failure"
	OutcomeSkipped       = "skipped"
)

// Metrics holds the Prometheus collectors for the funnel functions
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram
	HookForwards     *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a metrics set registered on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_listings_upstream_requests_total",
				Help: "Upstream listings fetches by outcome",
			},
			[]string{"outcome"},
		),
		UpstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "funnel_listings_upstream_duration_seconds",
				Help:    "Upstream listings fetch latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		HookForwards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_lead_hook_forwards_total",
				Help: "Lead hook forwards by outcome",
			},
			[]string{"outcome"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "funnel_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveUpstream records one upstream listings fetch
func (m *Metrics) ObserveUpstream(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(outcome).Inc()
	m.UpstreamDuration.Observe(d.Seconds())
}

// ObserveForward records one lead hook invocation
func (m *Metrics) ObserveForward(outcome string) {
	if m == nil {
		return
	}
	m.HookForwards.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
