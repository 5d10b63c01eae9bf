// Package metrics holds the Prometheus collectors for the proxy.
//
// All methods are safe on a nil *Metrics, so components can be built
// without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	ledgerCalls   *prometheus.CounterVec
	ledgerLatency *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanner",
			Name:      "http_requests_total",
			Help:      "Proxy HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scanner",
			Name:      "http_request_duration_seconds",
			Help:      "Proxy HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ledgerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanner",
			Name:      "ledger_calls_total",
			Help:      "Remote ledger calls by action and outcome.",
		}, []string{"action", "outcome"}),
		ledgerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scanner",
			Name:      "ledger_call_duration_seconds",
			Help:      "Remote ledger call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
	}
	reg.MustRegister(m.requests, m.requestTime, m.ledgerCalls, m.ledgerLatency)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveLedgerCall records one remote call. outcome is "ok", "rejected"
// (ledger answered success=false) or "transport".
func (m *Metrics) ObserveLedgerCall(action, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ledgerCalls.WithLabelValues(action, outcome).Inc()
	m.ledgerLatency.WithLabelValues(action).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
