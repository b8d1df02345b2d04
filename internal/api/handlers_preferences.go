// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/preferences"
)

// GetPreferences returns the authenticated user's stored preferences, or
// the defaults when none have been saved yet.
//
// @Summary Get user preferences
// @Description Returns the user's discovery preferences. A user who has never saved preferences gets the defaults with onboarding_done false.
// @Tags Preferences
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.UserPreferences} "Preferences retrieved"
// @Security BearerAuth
// @Router /preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.deps.Preferences.Get(r.Context(), userID(r.Context()))
	if err != nil {
		if errors.Is(err, preferences.ErrNotFound) {
			respondJSON(w, http.StatusOK, models.DefaultPreferences())
			return
		}
		logging.Error().Err(err).Msg("Preference read failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError,
			"Could not load preferences", nil)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// PutPreferences replaces the authenticated user's preferences.
//
// @Summary Update user preferences
// @Description Replaces the user's discovery preferences. The candidate pool is rebuilt lazily on the next recommendation request that observes the change.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body models.UserPreferences true "Preferences"
// @Success 200 {object} models.APIResponse{data=models.UserPreferences} "Preferences saved"
// @Failure 400 {object} models.APIResponse "Invalid weight level"
// @Security BearerAuth
// @Router /preferences [put]
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.UserPreferences
	if !decodeBody(w, r, &prefs) {
		return
	}

	for field, weight := range map[string]models.WeightLevel{
		"activity_weight":   prefs.ActivityWeight,
		"popularity_weight": prefs.PopularityWeight,
		"docs_weight":       prefs.DocsWeight,
	} {
		if weight != "" && !weight.IsValid() {
			respondError(w, http.StatusBadRequest, ErrCodeValidationFailed,
				field+" must be one of low, normal, high", nil)
			return
		}
	}

	prefs.UpdatedAt = time.Now()

	uid := userID(r.Context())
	if err := h.deps.Preferences.Set(r.Context(), uid, prefs); err != nil {
		logging.Error().Err(err).Str("user_id", uid).Msg("Preference write failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError,
			"Could not save preferences", nil)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}
