package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scan metrics
	ScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arbwatch_scans_total",
			Help: "Total number of scan cycles run",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arbwatch_scan_duration_seconds",
			Help:    "Duration of a full scan across all sports",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	EventsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_events_evaluated_total",
			Help: "Total number of events run through the calculator",
		},
		[]string{"status"}, // evaluated, skipped_outcomes, skipped_invalid, skipped_commence
	)

	OpportunitiesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_opportunities_found_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"sport"},
	)

	// Alert metrics
	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_alerts_sent_total",
			Help: "Total number of alerts sent",
		},
		[]string{"status", "channel"}, // success/error, log/telegram/smtp
	)

	// Odds API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_api_requests_total",
			Help: "Total number of odds API requests",
		},
		[]string{"endpoint", "status"}, // odds/sports, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbwatch_api_request_duration_seconds",
			Help:    "Duration of odds API requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	APIQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbwatch_api_quota_remaining",
			Help: "Requests remaining on the odds API key, from response headers",
		},
	)

	// Database metrics
	DatabaseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_database_queries_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	// Telegram bot metrics
	BotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_bot_updates_total",
			Help: "Total number of Telegram updates handled",
		},
		[]string{"type"}, // command, callback, message
	)

	// Health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"},
	)
)

// RecordHealthCheck records a health check result
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}

// RecordDatabaseQuery records a database operation result
func RecordDatabaseQuery(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueries.WithLabelValues(operation, status).Inc()
}
