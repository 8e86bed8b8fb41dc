package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// CatalogOps tracks catalog mutations
	CatalogOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_catalog_operations_total",
			Help: "Total number of catalog mutations",
		},
		[]string{"operation"}, // operation: define, update, delete
	)

	// ScoresComputed counts trust score computations by trend
	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_trust_scores_computed_total",
			Help: "Total number of trust score computations",
		},
		[]string{"trend"}, // trend: improving, stable, degrading
	)

	// ScoreDistribution observes computed trust scores
	ScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "semgov_trust_score",
			Help:    "Distribution of computed trust scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100
		},
	)

	// ValidationFindings counts validation findings by code and severity
	ValidationFindings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_validation_findings_total",
			Help: "Total number of validation findings",
		},
		[]string{"code", "severity"},
	)

	// APIRequests counts HTTP API requests by method and status
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "status"},
	)

	// StoreQueries counts store operations by outcome
	StoreQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_store_queries_total",
			Help: "Total number of metric store operations",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	// Sweeps counts rescoring sweeps by outcome
	Sweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semgov_rescoring_sweeps_total",
			Help: "Total number of rescoring sweeps",
		},
		[]string{"status"}, // status: success, partial, error
	)

	// SweepDuration measures rescoring sweep duration in seconds
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "semgov_rescoring_sweep_duration_seconds",
			Help:    "Rescoring sweep duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	// SweepMetricsScored tracks how many metrics the last sweep scored
	SweepMetricsScored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "semgov_rescoring_sweep_metrics_scored",
			Help: "Number of metrics scored by the last rescoring sweep",
		},
	)
)

// RecordCatalogOp increments the catalog mutation counter
func RecordCatalogOp(operation string) {
	CatalogOps.WithLabelValues(operation).Inc()
}

// RecordScoreComputed records one trust score computation
func RecordScoreComputed(trend string, score float64) {
	ScoresComputed.WithLabelValues(trend).Inc()
	ScoreDistribution.Observe(score)
}

// RecordValidationFinding increments the finding counter
func RecordValidationFinding(code, severity string) {
	ValidationFindings.WithLabelValues(code, severity).Inc()
}

// RecordAPIRequest increments the API request counter
func RecordAPIRequest(method, status string) {
	APIRequests.WithLabelValues(method, status).Inc()
}

// RecordStoreQuery records a store operation outcome
func RecordStoreQuery(operation, status string) {
	StoreQueries.WithLabelValues(operation, status).Inc()
}

// RecordSweep records the outcome of a rescoring sweep
func RecordSweep(status string, durationSeconds float64, scored int) {
	Sweeps.WithLabelValues(status).Inc()
	SweepDuration.Observe(durationSeconds)
	SweepMetricsScored.Set(float64(scored))
}
