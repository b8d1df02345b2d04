// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package middleware provides HTTP middleware shared by the API route tree.

Two components live here:

  - PrometheusMetrics: request instrumentation (active requests gauge,
    per-endpoint request counter and latency histogram)
  - Compression: gzip compression for clients that accept it, with a
    pooled writer to avoid per-request allocations

Both use the http.HandlerFunc shape and are adapted to chi's
func(http.Handler) http.Handler form at the router. Request ID tracing,
CORS and rate limiting come from the chi ecosystem and live in
internal/api.
*/
package middleware
