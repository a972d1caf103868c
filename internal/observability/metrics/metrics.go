package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "restroom_"

	resultSuccess = "success"
	resultError   = "error"
	resultSkipped = "skipped"
)

var (
	registerOnce sync.Once

	pollTotal   *prometheus.CounterVec
	pollLatency *prometheus.HistogramVec

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec

	rolloverTotal prometheus.Counter

	storeErrors *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	cleaningAlertsTotal *prometheus.CounterVec

	retentionDeleted prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		pollTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_total",
				Help: "Total status feed polls by result",
			},
			[]string{"result"},
		)
		pollLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_latency_seconds",
				Help:    "Status feed poll latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total device ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total device ingest errors by reason",
			},
			[]string{"reason"},
		)

		rolloverTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "day_rollover_total",
				Help: "Total day rollovers performed",
			},
		)

		storeErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_store_errors_total",
				Help: "Total summary store failures by operation",
			},
			[]string{"op"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		cleaningAlertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cleaning_alerts_total",
				Help: "Total cleaning alert notifications by result",
			},
			[]string{"result"},
		)

		retentionDeleted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "retention_deleted_days_total",
				Help: "Total per-day summary rows removed by the retention sweeper",
			},
		)

		prometheus.MustRegister(
			pollTotal,
			pollLatency,
			ingestRequests,
			ingestErrors,
			rolloverTotal,
			storeErrors,
			exportTotal,
			exportLatency,
			cleaningAlertsTotal,
			retentionDeleted,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObservePoll records one feed poll attempt.
func ObservePoll(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pollTotal != nil {
		pollTotal.WithLabelValues(result).Inc()
	}
	if pollLatency != nil {
		pollLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncPollSkipped counts a poll tick skipped because the previous fetch was
// still in flight.
func IncPollSkipped() {
	if pollTotal != nil {
		pollTotal.WithLabelValues(resultSkipped).Inc()
	}
}

// ObserveIngest records one device ingest request.
func ObserveIngest(result string) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
}

// IncIngestError increments ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// IncRollover counts a performed day rollover.
func IncRollover() {
	if rolloverTotal != nil {
		rolloverTotal.Inc()
	}
}

// IncStoreError counts a summary store failure.
func IncStoreError(op string) {
	if op == "" {
		op = "unknown"
	}
	if storeErrors != nil {
		storeErrors.WithLabelValues(op).Inc()
	}
}

// ObserveExport records report export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncCleaningAlert counts one cleaning alert notification attempt.
func IncCleaningAlert(result string) {
	if result == "" {
		result = resultSuccess
	}
	if cleaningAlertsTotal != nil {
		cleaningAlertsTotal.WithLabelValues(result).Inc()
	}
}

// AddRetentionDeleted adds removed day rows to the retention counter.
func AddRetentionDeleted(count int64) {
	if count <= 0 {
		return
	}
	if retentionDeleted != nil {
		retentionDeleted.Add(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultSkipped = resultSkipped
)
