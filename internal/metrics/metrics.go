// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - GitHub search adapter health
// - Recommendation, pool and cluster behaviour
// - Cache efficiency

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// GitHub Search Adapter Metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_search_requests_total",
			Help: "Total number of GitHub search API requests",
		},
		[]string{"operation", "result"}, // operation: "search", "trending", "signals"; result: "success", "rate_limited", "unavailable", "error"
	)

	SearchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_search_duration_seconds",
			Help:    "Duration of GitHub search API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	SearchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "github_search_retries_total",
			Help: "Total number of retried GitHub search API calls",
		},
	)

	SearchRateLimitRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "github_rate_limit_remaining",
			Help: "Remaining GitHub search API quota from the last response",
		},
	)

	SearchLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "github_last_success_timestamp",
			Help: "Unix timestamp of the last successful GitHub API call",
		},
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_request_duration_seconds",
			Help:    "End-to-end duration of recommendation requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of repositories served as recommendations",
		},
		[]string{"tier"}, // "pool", "cluster", "hybrid", "trending"
	)

	RecommendationEmpty = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_empty_total",
			Help: "Total number of recommendation requests answered with an empty set",
		},
	)

	HealthReports = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "health_reports_generated_total",
			Help: "Total number of repository health reports generated",
		},
	)

	Comparisons = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comparisons_total",
			Help: "Total number of repository comparisons performed",
		},
	)

	// Candidate Pool Metrics
	PoolBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_builds_total",
			Help: "Total number of candidate pool build attempts",
		},
		[]string{"outcome"}, // "built", "cache_hit", "stale", "error"
	)

	PoolBuildSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pool_build_size",
			Help:    "Number of candidates installed per pool build",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 500},
		},
	)

	PoolDraws = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_draws_total",
			Help: "Total number of candidates drawn from pools",
		},
	)

	PoolRefinements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_refinements_total",
			Help: "Total number of interaction-driven pool refinements",
		},
	)

	ActiveUserPools = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_user_pools",
			Help: "Current number of cached per-user candidate pools",
		},
	)

	// Cluster Metrics
	ClusterRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluster_rebuilds_total",
			Help: "Total number of cluster shortlist rebuilds",
		},
		[]string{"cluster", "result"}, // result: "success", "error"
	)

	ClusterShortlistSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluster_shortlist_size",
			Help: "Current number of repositories in each cluster shortlist",
		},
		[]string{"cluster"},
	)

	ClusterDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluster_detections_total",
			Help: "Total number of primary cluster detections by cluster",
		},
		[]string{"cluster"},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "search", "trending", "health"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Swipe Ingestion Metrics (NATS)
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of messages skipped due to deduplication",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NATSBatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_batch_flush_duration_seconds",
			Help:    "Duration of batch flush operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NATSBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_batch_size",
			Help:    "Number of events in each batch flush",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	NATSQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nats_queue_depth",
			Help: "Current depth of the NATS message queue",
		},
	)

	IngestPoisonMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_poison_messages_total",
			Help: "Total number of swipe events routed to the poison queue",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSearchRequest records the outcome of a GitHub API call. The result
// label is one of "success", "rate_limited", "unavailable" or "error".
func RecordSearchRequest(operation, result string, duration time.Duration) {
	SearchRequests.WithLabelValues(operation, result).Inc()
	SearchRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if result == "success" {
		SearchLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRecommendationsServed records repositories handed out for a tier
func RecordRecommendationsServed(tier string, count int) {
	if count > 0 {
		RecommendationsServed.WithLabelValues(tier).Add(float64(count))
	}
}

// RecordClusterRebuild records a cluster shortlist rebuild and its new size
func RecordClusterRebuild(cluster string, size int, err error) {
	if err != nil {
		ClusterRebuilds.WithLabelValues(cluster, "error").Inc()
		return
	}
	ClusterRebuilds.WithLabelValues(cluster, "success").Inc()
	ClusterShortlistSize.WithLabelValues(cluster).Set(float64(size))
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSProcessed records a message being successfully processed
func RecordNATSProcessed() {
	NATSMessagesProcessed.Inc()
}

// RecordNATSDeduplicated records a message being skipped due to deduplication
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records the duration of message processing
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSBatchFlush records a batch flush operation
func RecordNATSBatchFlush(duration time.Duration, batchSize int) {
	NATSBatchFlushDuration.Observe(duration.Seconds())
	NATSBatchSize.Observe(float64(batchSize))
}

// UpdateNATSQueueDepth updates the NATS queue depth gauge
func UpdateNATSQueueDepth(depth int64) {
	NATSQueueDepth.Set(float64(depth))
}

// RecordIngestPoison records a swipe event routed to the poison queue
func RecordIngestPoison() {
	IngestPoisonMessages.Inc()
}
