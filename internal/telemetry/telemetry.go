// Package telemetry holds the prometheus collectors for the lotboard server.
// A nil *Metrics is valid and records nothing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	QuoteFetches    *prometheus.CounterVec // labels: result=ok|error
	QuotesDiscarded prometheus.Counter
	QuoteFetchDur   prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // labels: method, code
	OrderCalls   *prometheus.CounterVec // labels: kind=submit|cancel|liquidate, result
	WSClients    prometheus.Gauge

	registry *prometheus.Registry
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		QuoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotboard_quote_fetches_total",
			Help: "Upstream latest-trade requests by result",
		}, []string{"result"}),
		QuotesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lotboard_quotes_discarded_total",
			Help: "Quote responses dropped because a newer request was issued",
		}),
		QuoteFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lotboard_quote_fetch_seconds",
			Help:    "Latency of upstream latest-trade requests",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotboard_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "code"}),
		OrderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lotboard_order_calls_total",
			Help: "Order commands forwarded to the broker",
		}, []string{"kind", "result"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lotboard_ws_clients",
			Help: "Connected websocket clients",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.QuoteFetches,
		m.QuotesDiscarded,
		m.QuoteFetchDur,
		m.HTTPRequests,
		m.OrderCalls,
		m.WSClients,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveQuoteFetch(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.QuoteFetches.WithLabelValues(result(err)).Inc()
	m.QuoteFetchDur.Observe(d.Seconds())
}

func (m *Metrics) QuoteDiscarded() {
	if m == nil {
		return
	}
	m.QuotesDiscarded.Inc()
}

func (m *Metrics) ObserveRequest(method string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveOrder(kind string, err error) {
	if m == nil {
		return
	}
	m.OrderCalls.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.WSClients.Set(float64(n))
}
