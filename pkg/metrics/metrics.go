// Package metrics exposes invocation metrics over Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/virtmock/virtmock/pkg/event"
	"github.com/virtmock/virtmock/pkg/virt"
)

// Metrics holds the Prometheus collectors for the mock engine. Each
// Metrics value carries its own registry so tests can create instances
// freely without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	dispatchFailures   *prometheus.CounterVec
}

// New creates and registers the engine collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "virtmock_invocations_total",
				Help: "Total number of serviced mock invocations",
			},
			[]string{"service", "version", "status"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "virtmock_invocation_duration_seconds",
				Help:    "Wall-clock duration of mock invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "version"},
		),
		dispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "virtmock_dispatch_failures_total",
				Help: "Total number of recovered dispatch computation failures",
			},
			[]string{"dispatcher"},
		),
	}
	m.registry.MustRegister(m.invocations, m.invocationDuration, m.dispatchFailures)
	return m
}

// Consume implements event.Sink so Metrics can be wired straight into
// the invocation publisher.
func (m *Metrics) Consume(inv event.Invocation) {
	status := strconv.Itoa(inv.StatusCode)
	m.invocations.WithLabelValues(inv.ServiceName, inv.ServiceVersion, status).Inc()
	m.invocationDuration.WithLabelValues(inv.ServiceName, inv.ServiceVersion).Observe(inv.Duration.Seconds())
}

// RecordDispatchFailure counts a recovered criteria-computation failure.
func (m *Metrics) RecordDispatchFailure(style virt.DispatchStyle) {
	name := string(style)
	if name == "" {
		name = "NONE"
	}
	m.dispatchFailures.WithLabelValues(name).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Ensure Metrics can act as an invocation sink.
var _ event.Sink = (*Metrics)(nil)
