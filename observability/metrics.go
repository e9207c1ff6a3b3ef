package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	inflight  *prometheus.GaugeVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics
)

// ModuleMetrics returns the lazily-initialised registry for HTTP handlers.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "safepump",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Handled requests by module, route and status class.",
			}, []string{"module", "route", "class"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "safepump",
				Subsystem: "http",
				Name:      "request_seconds",
				Help:      "Handler latency by module and route.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			}, []string{"module", "route"}),
			inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "safepump",
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Requests currently being served.",
			}, []string{"module"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "safepump",
				Subsystem: "http",
				Name:      "throttled_total",
				Help:      "Requests refused before reaching a handler.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.latency,
			moduleRegistry.inflight,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// statusClass buckets 201 as "2xx" and so on.
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Begin marks a request in flight. The returned func must be called once.
func (m *moduleMetrics) Begin(module string) func() {
	if m == nil {
		return func() {}
	}
	g := m.inflight.WithLabelValues(orUnknown(module))
	g.Inc()
	return g.Dec
}

// Observe records a finished request with the status written to the client.
func (m *moduleMetrics) Observe(module, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	module, route = orUnknown(module), orUnknown(route)
	m.requests.WithLabelValues(module, route, statusClass(status)).Inc()
	m.latency.WithLabelValues(module, route).Observe(duration.Seconds())
}

func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(orUnknown(module), reason).Inc()
}
