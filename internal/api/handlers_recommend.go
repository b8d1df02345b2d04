// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Recommendations returns the next batch of recommended repositories for
// the authenticated user.
//
// @Summary Get recommendations
// @Description Returns a batch of recommended repositories for the authenticated user, produced by the tiered fallback cascade. Degraded is set when generic trending results had to fill the batch.
// @Tags Recommendations
// @Produce json
// @Param count query int false "Number of recommendations (default 10)"
// @Success 200 {object} models.APIResponse{data=recommend.Set} "Recommendations retrieved"
// @Failure 503 {object} models.APIResponse "Upstream search service unavailable"
// @Security BearerAuth
// @Router /recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest,
				"count must be a positive integer", nil)
			return
		}
		count = n
	}

	set, err := h.deps.Recommend.GetRecommendations(r.Context(), userID(r.Context()), count)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSONTimed(w, http.StatusOK, set, started)
}

// RepoHealth returns the scored health report for one repository.
//
// @Summary Get repository health report
// @Description Returns the health score breakdown for a single repository. Partial is set when activity signals could not be fetched.
// @Tags Recommendations
// @Produce json
// @Param id path int true "Repository ID"
// @Success 200 {object} models.APIResponse{data=recommend.HealthReport} "Health report retrieved"
// @Failure 404 {object} models.APIResponse "Repository not found"
// @Security BearerAuth
// @Router /repos/{id}/health [get]
func (h *Handler) RepoHealth(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	repoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || repoID <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest,
			"id must be a positive integer", nil)
		return
	}

	report, err := h.deps.Recommend.GetHealthReport(r.Context(), repoID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSONTimed(w, http.StatusOK, report, started)
}

type compareRequest struct {
	RepoIDs []int64 `json:"repo_ids" validate:"required,min=2,max=5,dive,gt=0"`
}

// Compare produces a side-by-side comparison of two to five repositories.
//
// @Summary Compare repositories
// @Description Scores the given repositories against each other and declares per-category and overall winners.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body compareRequest true "Repository IDs to compare (2-5)"
// @Success 200 {object} models.APIResponse{data=compare.Result} "Comparison result"
// @Failure 400 {object} models.APIResponse "Fewer than two resolvable repositories"
// @Security BearerAuth
// @Router /compare [post]
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"repo_ids must contain 2 to 5 positive repository IDs", nil)
		return
	}

	result, err := h.deps.Recommend.Compare(r.Context(), req.RepoIDs)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSONTimed(w, http.StatusOK, result, started)
}
