// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the payout daemon.
type Metrics struct {
	// Run metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	HoldersProcessed prometheus.Counter

	// Attempt metrics
	AttemptsTotal     *prometheus.CounterVec
	TokensDistributed prometheus.Counter

	// Ledger metrics
	RPCCallLatency *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mining_arc"
	}

	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "runs_total",
			Help:      "Total number of payout runs by outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "run_duration_seconds",
			Help:      "Payout run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		HoldersProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "holders_processed_total",
			Help:      "Total number of holders considered across runs",
		}),
		AttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "attempts_total",
			Help:      "Total number of dispatch attempts by status",
		}, []string{"status"}),
		TokensDistributed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "tokens_distributed_total",
			Help:      "Total tokens distributed across successful attempts",
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rpc_call_latency_seconds",
			Help:      "Ledger RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful payout run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRun records a completed payout run.
func RecordRun(outcome string, durationSeconds float64) {
	DefaultMetrics.RunsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.RunDuration.Observe(durationSeconds)
}

// RecordAttempt records one dispatch attempt.
func RecordAttempt(status string, amount float64) {
	DefaultMetrics.AttemptsTotal.WithLabelValues(status).Inc()
	if amount > 0 {
		DefaultMetrics.TokensDistributed.Add(amount)
	}
}

// RecordHolders counts holders considered in a run.
func RecordHolders(n int) {
	DefaultMetrics.HoldersProcessed.Add(float64(n))
}

// RecordRPCLatency records ledger RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// MarkSuccessfulRun stamps the health gauge with the current run end time.
func MarkSuccessfulRun(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulRun.Set(unixSeconds)
}
