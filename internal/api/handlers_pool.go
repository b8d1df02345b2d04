// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net/http"
	"time"
)

// RefreshPool rebuilds the authenticated user's candidate pool from their
// current preferences.
//
// @Summary Refresh candidate pool
// @Description Rebuilds the user's candidate pool from the remote search service using their current preferences. Blocks until the rebuild completes.
// @Tags Pool
// @Produce json
// @Success 200 {object} models.APIResponse "Pool rebuilt"
// @Failure 503 {object} models.APIResponse "Upstream search service unavailable"
// @Security BearerAuth
// @Router /pool/refresh [post]
func (h *Handler) RefreshPool(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	uid := userID(r.Context())
	if err := h.deps.Recommend.RefreshPool(r.Context(), uid); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSONTimed(w, http.StatusOK, map[string]interface{}{
		"user_id":   uid,
		"refreshed": true,
	}, started)
}

// ClearPool drops the authenticated user's candidate pool. The next
// recommendation request rebuilds it from scratch.
//
// @Summary Clear candidate pool
// @Description Drops the user's candidate pool so the next recommendation request starts fresh. Useful after large preference changes.
// @Tags Pool
// @Produce json
// @Success 200 {object} models.APIResponse "Pool cleared"
// @Security BearerAuth
// @Router /pool [delete]
func (h *Handler) ClearPool(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	h.deps.Recommend.ClearPool(uid)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": uid,
		"cleared": true,
	})
}
