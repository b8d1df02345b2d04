// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reposcout/internal/logging"
)

// ClusterStatus reports every cluster's shortlist state.
//
// @Summary Get cluster shortlist status
// @Description Returns per-cluster shortlist sizes and last rebuild times. Admin only.
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse "Cluster status retrieved"
// @Security BearerAuth
// @Router /admin/cluster/status [get]
func (h *Handler) ClusterStatus(w http.ResponseWriter, r *http.Request) {
	if h.deps.Clusters == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound,
			"Cluster management is not enabled", nil)
		return
	}

	respondJSON(w, http.StatusOK, h.deps.Clusters.Status())
}

// ClusterRebuild triggers an immediate rebuild of every cluster shortlist.
//
// @Summary Rebuild cluster shortlists
// @Description Rebuilds every cluster's shortlist from the remote search service. Clusters whose fetch fails keep their previous shortlist. Admin only.
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse "Shortlists rebuilt"
// @Failure 502 {object} models.APIResponse "One or more clusters failed to rebuild"
// @Security BearerAuth
// @Router /admin/cluster/rebuild [post]
func (h *Handler) ClusterRebuild(w http.ResponseWriter, r *http.Request) {
	if h.deps.Clusters == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound,
			"Cluster management is not enabled", nil)
		return
	}

	started := time.Now()
	if err := h.deps.Clusters.RebuildAll(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Cluster rebuild finished with errors")
		respondError(w, http.StatusBadGateway, ErrCodeRemoteUnavailable,
			"Some clusters failed to rebuild and kept their previous shortlists",
			map[string]interface{}{"error": err.Error()})
		return
	}

	respondJSONTimed(w, http.StatusOK, h.deps.Clusters.Status(), started)
}
