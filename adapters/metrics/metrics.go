// Package metrics provides Prometheus metrics collection for Starfeed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for Starfeed.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Gate metrics
	GateDecisions   *prometheus.CounterVec
	QuotaRejections *prometheus.CounterVec

	// Ledger metrics
	LedgerBatchSize    prometheus.Histogram
	LedgerWriteErrors  prometheus.Counter
	LedgerHitsRecorded prometheus.Counter

	// Payment metrics
	OrdersCreated  *prometheus.CounterVec
	VerifyResults  *prometheus.CounterVec
	QuotasCredited *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector with all metrics registered.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "starfeed",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "gate_decisions_total",
				Help:      "API key gate outcomes by reason",
			},
			[]string{"outcome"}, // "allowed", "missing_api_key", "invalid_api_key", "quota_exceeded"
		),
		QuotaRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "quota_rejections_total",
				Help:      "Calls rejected because the monthly quota is exhausted",
			},
			[]string{"plan_id"},
		),
		LedgerBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "starfeed",
				Name:      "ledger_batch_size",
				Help:      "Hits per ledger persistence batch",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),
		LedgerWriteErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "ledger_write_errors_total",
				Help:      "Failed ledger persistence batches",
			},
		),
		LedgerHitsRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "ledger_hits_recorded_total",
				Help:      "Accepted calls persisted to the usage ledger",
			},
		),
		OrdersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "orders_created_total",
				Help:      "Payment orders created by plan",
			},
			[]string{"plan_id"},
		),
		VerifyResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "payment_verifications_total",
				Help:      "Payment verification attempts by result",
			},
			[]string{"result"}, // "ok", "signature_mismatch", "order_not_found", "credit_failed"
		),
		QuotasCredited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "quotas_credited_total",
				Help:      "Successful quota credits by plan",
			},
			[]string{"plan_id"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "starfeed",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
	}
}
