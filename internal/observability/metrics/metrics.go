// Package metrics exposes Prometheus instruments for the application.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	revenueEventsProcessed *prometheus.CounterVec
	revenueEventsSkipped   *prometheus.CounterVec
	revenueEventsFailed    *prometheus.CounterVec
	revenueRebuildRuns     *prometheus.CounterVec

	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
}

// New builds the registry and all instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		revenueEventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "factura_revenue_events_processed_total",
			Help: "Invoice events applied to the revenue aggregate.",
		}, []string{"operation"}),
		revenueEventsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "factura_revenue_events_skipped_total",
			Help: "Invoice events skipped by the revenue engine.",
		}, []string{"reason"}),
		revenueEventsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "factura_revenue_events_failed_total",
			Help: "Invoice events that failed during revenue processing.",
		}, []string{"operation"}),
		revenueRebuildRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "factura_revenue_rebuild_runs_total",
			Help: "Revenue reconciliation runs by outcome.",
		}, []string{"outcome"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factura_http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"route", "status"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "factura_http_in_flight",
			Help: "In-flight HTTP requests.",
		}),
	}
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncEventProcessed(operation string) {
	if m == nil {
		return
	}
	m.revenueEventsProcessed.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Metrics) IncEventSkipped(reason string) {
	if m == nil {
		return
	}
	m.revenueEventsSkipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncEventFailed(operation string) {
	if m == nil {
		return
	}
	m.revenueEventsFailed.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Metrics) IncRebuildRun(outcome string) {
	if m == nil {
		return
	}
	m.revenueRebuildRuns.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
