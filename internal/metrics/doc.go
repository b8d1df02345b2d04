// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - GitHub search adapter health and quota
  - Recommendation serving, candidate pools and cluster shortlists
  - Swipe ingestion pipeline (NATS)
  - Circuit breaker state transitions
  - Cache hit/miss rates

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_connection_pool_size: Active database connections (gauge)

GitHub Search Metrics:
  - github_search_requests_total: GitHub API calls by outcome (counter)
    Labels: operation (search, trending, signals), result
  - github_search_duration_seconds: GitHub API latency (histogram)
    Labels: operation
  - github_search_retries_total: Retried calls (counter)
  - github_rate_limit_remaining: Quota left on the last response (gauge)
  - github_last_success_timestamp: Unix timestamp of last success (gauge)

Recommendation Metrics:
  - recommendation_request_duration_seconds: End-to-end latency (histogram)
  - recommendations_served_total: Repositories served (counter)
    Labels: tier (pool, cluster, hybrid, trending)
  - recommendation_empty_total: Requests answered empty (counter)
  - health_reports_generated_total: Health reports produced (counter)
  - comparisons_total: Comparisons performed (counter)

Pool Metrics:
  - pool_builds_total: Build attempts by outcome (counter)
    Labels: outcome (built, cache_hit, stale, error)
  - pool_build_size: Candidates installed per build (histogram)
  - pool_draws_total: Candidates drawn from pools (counter)
  - pool_refinements_total: Interaction-driven refinements (counter)
  - active_user_pools: Cached per-user pools (gauge)

Cluster Metrics:
  - cluster_rebuilds_total: Shortlist rebuilds (counter)
    Labels: cluster, result
  - cluster_shortlist_size: Repositories per shortlist (gauge)
    Labels: cluster
  - cluster_detections_total: Primary cluster detections (counter)
    Labels: cluster

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
    Labels: cache_type
  - cache_entries: Current cached entries (gauge)
    Labels: cache_type

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge, 0=closed, 1=half-open, 2=open)
    Labels: name
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

Ingestion Metrics:
  - nats_messages_published_total, nats_messages_consumed_total,
    nats_messages_processed_total, nats_messages_deduplicated_total,
    nats_messages_parse_failed_total (counters)
  - nats_processing_duration_seconds, nats_batch_flush_duration_seconds,
    nats_batch_size (histograms)
  - nats_queue_depth: Pending messages (gauge)
  - ingest_poison_messages_total: Events routed to the poison queue (counter)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/tomtom215/reposcout/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordAPIRequest("GET", "/api/v1/recommendations", "200", 23*time.Millisecond)
	    metrics.RecordDBQuery("SELECT", "interactions", 5*time.Millisecond, nil)
	    metrics.RecordSearchRequest("trending", "success", 480*time.Millisecond)
	}

# PromQL Examples

	# API request rate
	rate(api_requests_total[5m])

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# GitHub error ratio
	sum(rate(github_search_requests_total{result!="success"}[5m]))
	/
	sum(rate(github_search_requests_total[5m]))

	# Pool cache hit rate
	rate(pool_builds_total{outcome="cache_hit"}[5m])
	/
	rate(pool_builds_total[5m])

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels are normalized (no query parameters)
  - Error types are truncated or mapped to fixed constants
  - User-specific labels are avoided; pool metrics aggregate across users
  - Cluster labels are bounded by the configured cluster definitions

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/database: Database metrics recording
  - internal/search: GitHub adapter metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
