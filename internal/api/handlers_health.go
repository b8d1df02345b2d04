// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net/http"
	"time"
)

// Health reports overall service health.
//
// @Summary Get service health
// @Description Returns overall health including interaction store connectivity and uptime. Degrades rather than fails when storage is down.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.deps.DB != nil && h.deps.DB.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":             status,
		"database_connected": dbConnected,
		"ingest_enabled":     h.deps.Publisher != nil,
		"uptime_seconds":     time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is the liveness probe. It answers 200 whenever the process
// is up, regardless of dependencies.
//
// @Summary Liveness probe
// @Description Returns 200 whenever the process is alive, regardless of external dependencies.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe. It answers 503 until the interaction
// store is reachable.
//
// @Summary Readiness probe
// @Description Returns 200 when the service can handle traffic, 503 while the interaction store is unreachable.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.deps.DB != nil && h.deps.DB.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, map[string]interface{}{
		"ready":              dbConnected,
		"database_connected": dbConnected,
		"uptime_seconds":     time.Since(h.startTime).Seconds(),
	})
}
