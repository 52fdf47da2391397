// Package metrics exposes Prometheus collectors for signal
// generation, bot lifecycles and process health, served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// signal metrics
	signalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademantra_signal_total",
			Help: "Total number of signals generated",
		},
		[]string{"symbol", "action", "strategy"},
	)

	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademantra_evaluation_duration_seconds",
			Help:    "Strategy evaluation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
		},
		[]string{"symbol"},
	)

	evaluationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademantra_evaluation_errors_total",
			Help: "Total number of per-symbol evaluation failures",
		},
		[]string{"symbol"},
	)

	lastPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trademantra_last_price",
			Help: "Last evaluated price per symbol",
		},
		[]string{"symbol"},
	)

	// bot metrics
	activeBots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademantra_active_bots",
			Help: "Number of running bots",
		},
	)

	botHeartbeatAge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trademantra_bot_heartbeat_age_seconds",
			Help: "Seconds since each bot's last heartbeat",
		},
		[]string{"user_id", "bot_type"},
	)

	// lock metrics
	lockAcquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademantra_lock_acquisitions_total",
			Help: "Distributed lock acquisition attempts",
		},
		[]string{"result"},
	)

	// runtime metrics
	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademantra_goroutines",
			Help: "Number of goroutines",
		},
	)

	memoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademantra_memory_alloc_bytes",
			Help: "Heap bytes allocated and in use",
		},
	)

	cpuPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademantra_cpu_percent",
			Help: "Host CPU utilization percent",
		},
	)

	memoryPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademantra_memory_percent",
			Help: "Host memory utilization percent",
		},
	)
)

// RecordSignal counts one emitted signal.
func RecordSignal(symbol, action, strategyName string) {
	signalTotal.WithLabelValues(symbol, action, strategyName).Inc()
}

// RecordEvaluation records one symbol evaluation.
func RecordEvaluation(symbol string, duration time.Duration) {
	evaluationDuration.WithLabelValues(symbol).Observe(duration.Seconds())
}

// RecordEvaluationError counts a per-symbol failure.
func RecordEvaluationError(symbol string) {
	evaluationErrors.WithLabelValues(symbol).Inc()
}

// SetLastPrice publishes the latest evaluated price.
func SetLastPrice(symbol string, price float64) {
	lastPrice.WithLabelValues(symbol).Set(price)
}

// SetActiveBots publishes the bot count.
func SetActiveBots(n int) {
	activeBots.Set(float64(n))
}

// SetBotHeartbeatAge publishes a bot's heartbeat staleness.
func SetBotHeartbeatAge(userID, botType string, age time.Duration) {
	botHeartbeatAge.WithLabelValues(userID, botType).Set(age.Seconds())
}

// RemoveBotHeartbeat drops the gauge series for a stopped bot.
func RemoveBotHeartbeat(userID, botType string) {
	botHeartbeatAge.DeleteLabelValues(userID, botType)
}

// RecordLockAcquisition counts a lock attempt outcome:
// "acquired", "busy" or "error".
func RecordLockAcquisition(result string) {
	lockAcquisitions.WithLabelValues(result).Inc()
}
