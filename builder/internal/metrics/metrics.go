package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telhawk_querybuilder_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Compilation metrics
	CompilationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_compilations_total",
			Help: "Total number of compilations by outcome (compiled, empty)",
		},
		[]string{"outcome"},
	)

	RejectedConditionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_rejected_conditions_total",
			Help: "Total number of conditions left out of compiled queries",
		},
	)

	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_analyses_total",
			Help: "Total number of query analyses by source (http, live, nats)",
		},
		[]string{"source"},
	)

	AnalysisComplexity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_querybuilder_analysis_complexity_score",
			Help:    "Distribution of complexity scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	StaleAnalysesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_stale_analyses_dropped_total",
			Help: "Total number of superseded analysis results discarded",
		},
	)

	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "telhawk_querybuilder_live_sessions",
			Help: "Current number of open live-analysis connections",
		},
	)

	// Search metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_searches_total",
			Help: "Total number of searches by status",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_querybuilder_search_duration_seconds",
			Help:    "Duration of executor calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Saved query metrics
	SavedQueryOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_saved_query_operations_total",
			Help: "Total number of saved query store operations",
		},
		[]string{"operation", "status"},
	)

	// NATS metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_querybuilder_jobs_total",
			Help: "Total number of NATS jobs processed",
		},
		[]string{"subject", "status"},
	)
)

// Status labels shared by the counters above.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusOf maps err to a status label.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
