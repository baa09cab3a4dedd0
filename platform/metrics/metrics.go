// Package metrics owns the prometheus registry and the collectors shared by
// the HTTP layer and the domain modules.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadsync"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	WebhookReceived     *prometheus.CounterVec
	WebhookDuration     *prometheus.HistogramVec
	WebhookRejected     *prometheus.CounterVec
	SyncEntities        *prometheus.CounterVec
	SyncFailures        *prometheus.CounterVec
}

// New creates the registry with Go/process collectors and the custom vectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		WebhookReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "received_total",
				Help:      "Authenticated webhook deliveries by source and outcome.",
			},
			[]string{"source", "outcome"},
		),
		WebhookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "duration_seconds",
				Help:      "Time spent ingesting one webhook delivery.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		WebhookRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "rejected_total",
				Help:      "Webhook requests that failed authentication.",
			},
			[]string{"source"},
		),
		SyncEntities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "entities_total",
				Help:      "Entities touched by reconciliation passes.",
			},
			[]string{"kind", "action"},
		),
		SyncFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "failures_total",
				Help:      "Reconciliation passes that ended with an error.",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestDuration,
		m.WebhookReceived,
		m.WebhookDuration,
		m.WebhookRejected,
		m.SyncEntities,
		m.SyncFailures,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest satisfies httpkit.LatencyObserver.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, latency time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(latency.Seconds())
}
