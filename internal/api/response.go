// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/recommend"
)

// Error codes carried in the APIResponse error envelope.
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidationFailed  = "VALIDATION_ERROR"
	ErrCodeInsufficientInput = "INSUFFICIENT_INPUT"
	ErrCodeUnauthorized      = "AUTHENTICATION_ERROR"
	ErrCodeForbidden         = "AUTHORIZATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeTooManyRequests   = "RATE_LIMIT_EXCEEDED"
	ErrCodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// respondJSON writes data wrapped in the standard envelope.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	}
	writeJSON(w, statusCode, &resp)
}

// respondJSONTimed is respondJSON with the handler's elapsed time recorded
// in the response metadata.
func respondJSONTimed(w http.ResponseWriter, statusCode int, data interface{}, started time.Time) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	}
	writeJSON(w, statusCode, &resp)
}

// respondError writes an error envelope with the given code and message.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	}
	writeJSON(w, statusCode, &resp)
}

// respondEngineError maps recommendation engine sentinel errors onto HTTP
// statuses. Unknown errors become opaque 500s; the detail stays in the log.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Repository not found", nil)
	case errors.Is(err, recommend.ErrInsufficientInput):
		respondError(w, http.StatusBadRequest, ErrCodeInsufficientInput, err.Error(), nil)
	case errors.Is(err, recommend.ErrRemoteUnavailable):
		respondError(w, http.StatusServiceUnavailable, ErrCodeRemoteUnavailable,
			"Upstream search service unavailable, try again later", nil)
	default:
		logging.Error().Err(err).Msg("Unhandled engine error")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError,
			"An internal error occurred", nil)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown or
// oversized payloads. Returns false after writing the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest,
			"Invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}
