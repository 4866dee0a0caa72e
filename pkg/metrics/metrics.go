// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "procurement"
	subsystem = "settlement"
)

// Deduction outcomes recorded by the budget ledger.
const (
	DeductionOK           = "ok"
	DeductionInsufficient = "insufficient"
	DeductionNotFound     = "not_found"
	DeductionConflict     = "conflict"
	DeductionError        = "error"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	Deductions        *prometheus.CounterVec
	DeductionRetries  prometheus.Counter
	OrdersCreated     prometheus.Counter
	OrderTotal        prometheus.Histogram
	ShippingFallbacks prometheus.Counter
	OrderRequests     *prometheus.CounterVec
	OutboxRelayed     *prometheus.CounterVec
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Deductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "budget_deductions_total",
			Help:      "Budget deductions by outcome.",
		}, []string{"result"}),
		DeductionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "budget_deduction_retries_total",
			Help:      "Deduction transactions retried after a serialization failure or deadlock.",
		}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_created_total",
			Help:      "Orders settled against a budget.",
		}),
		OrderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_total_amount",
			Help:      "Total amount charged per settled order.",
			Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
		}),
		ShippingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shipping_fee_fallbacks_total",
			Help:      "Orders settled with a zero shipping fee because the fee could not be computed.",
		}),
		OrderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_requests_total",
			Help:      "Order request lifecycle events.",
		}, []string{"event"}),
		OutboxRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_relayed_total",
			Help:      "Outbox events handed to the broker, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.Deductions,
		m.DeductionRetries,
		m.OrdersCreated,
		m.OrderTotal,
		m.ShippingFallbacks,
		m.OrderRequests,
		m.OutboxRelayed,
	)
	return m
}

// NewUnregistered builds collectors on a private registry. Used by tests and
// tools that never expose /metrics.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
