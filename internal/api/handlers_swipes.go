// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/reposcout/internal/ingest"
	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/models"
)

type swipeRequest struct {
	Repository models.Repository `json:"repository" validate:"required"`
	Action     string            `json:"action" validate:"required"`
	Source     string            `json:"source,omitempty"`
	Position   int               `json:"position,omitempty"`
}

type swipeResponse struct {
	EventID  string `json:"event_id"`
	Accepted bool   `json:"accepted"`
}

// Swipe records a user interaction with a repository card. The event is
// published to the ingest stream and persisted asynchronously; a 202 means
// accepted, not yet stored.
//
// @Summary Record a swipe
// @Description Publishes a swipe event (view, like, save, skip) for asynchronous ingestion. The repository snapshot travels with the event so the interaction store never needs a remote lookup.
// @Tags Swipes
// @Accept json
// @Produce json
// @Param request body swipeRequest true "Swipe payload"
// @Success 202 {object} models.APIResponse{data=swipeResponse} "Event accepted"
// @Failure 400 {object} models.APIResponse "Invalid swipe payload"
// @Failure 503 {object} models.APIResponse "Ingest pipeline unavailable"
// @Security BearerAuth
// @Router /swipes [post]
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	if h.deps.Publisher == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeRemoteUnavailable,
			"Swipe ingestion is not enabled", nil)
		return
	}

	var req swipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"repository and action are required", nil)
		return
	}

	event := ingest.NewSwipeEvent(userID(r.Context()), req.Repository, models.InteractionAction(req.Action))
	event.Source = req.Source
	event.Position = req.Position

	if err := event.Validate(); err != nil {
		var verr *ingest.ValidationError
		details := map[string]interface{}{}
		if errors.As(err, &verr) {
			details[verr.Field] = verr.Message
		}
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), details)
		return
	}

	if err := h.deps.Publisher.PublishEvent(r.Context(), event); err != nil {
		logging.Error().Err(err).
			Str("user_id", event.UserID).
			Str("action", string(event.Action)).
			Msg("Swipe publish failed")
		respondError(w, http.StatusServiceUnavailable, ErrCodeRemoteUnavailable,
			"Could not accept the swipe, try again later", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, swipeResponse{
		EventID:  event.EventID,
		Accepted: true,
	})
}
