package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	transferCounter         *prometheus.CounterVec
	toolCallCounter         *prometheus.CounterVec
	elicitationCounter      *prometheus.CounterVec
	preCheckFailureCounter  *prometheus.CounterVec
	idempotencyCounter      *prometheus.CounterVec
	invariantViolationCount *prometheus.CounterVec
	accountBalanceGauge     *prometheus.GaugeVec
	limitUtilizationGauge   *prometheus.GaugeVec
	workerRunCounter        *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		transferCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Transfer executions by outcome",
		}, []string{"outcome"})

		toolCallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Tool invocations by name and result",
		}, []string{"tool", "result"})

		elicitationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elicitations_total",
			Help: "Clarifying prompts emitted by priority",
		}, []string{"priority"})

		preCheckFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_failures_total",
			Help: "Failed pre-checks by name",
		}, []string{"check"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		invariantViolationCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_invariant_violations_total",
			Help: "Account state invariants found broken by reconciliation",
		}, []string{"account", "invariant"})

		accountBalanceGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Last reconciled account balance",
		}, []string{"account", "currency"})

		limitUtilizationGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_limit_utilization_ratio",
			Help: "Transfer counter over limit, per window",
		}, []string{"account", "window"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			transferCounter,
			toolCallCounter,
			elicitationCounter,
			preCheckFailureCounter,
			idempotencyCounter,
			invariantViolationCount,
			accountBalanceGauge,
			limitUtilizationGauge,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementTransfer(outcome string) {
	if transferCounter == nil {
		return
	}
	transferCounter.WithLabelValues(outcome).Inc()
}

func IncrementToolCall(tool, result string) {
	if toolCallCounter == nil {
		return
	}
	toolCallCounter.WithLabelValues(tool, result).Inc()
}

func IncrementElicitation(priority string) {
	if elicitationCounter == nil {
		return
	}
	elicitationCounter.WithLabelValues(priority).Inc()
}

func IncrementPreCheckFailure(check string) {
	if preCheckFailureCounter == nil {
		return
	}
	preCheckFailureCounter.WithLabelValues(check).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementInvariantViolation(account, invariant string) {
	if invariantViolationCount == nil {
		return
	}
	invariantViolationCount.WithLabelValues(account, invariant).Inc()
}

func SetAccountBalance(account, currency string, balance float64) {
	if accountBalanceGauge == nil {
		return
	}
	accountBalanceGauge.WithLabelValues(account, currency).Set(balance)
}

func SetLimitUtilization(account, window string, ratio float64) {
	if limitUtilizationGauge == nil {
		return
	}
	limitUtilizationGauge.WithLabelValues(account, window).Set(ratio)
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
