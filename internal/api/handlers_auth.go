// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net"
	"net/http"
	"time"

	"github.com/tomtom215/reposcout/internal/logging"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies the admin credentials and issues a JWT.
//
// @Summary Log in
// @Description Verifies username and password and returns a signed JWT carrying the admin role. Subject to strict per-IP rate limiting.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=loginResponse} "Token issued"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 429 {object} models.APIResponse "Too many attempts"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.deps.JWT == nil || h.deps.Verifier == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound,
			"Authentication is not enabled", nil)
		return
	}

	if h.deps.Logins != nil && !h.deps.Logins.Allow(clientIP(r)) {
		h.security.LogRateLimited(clientIP(r), r.UserAgent())
		respondError(w, http.StatusTooManyRequests, ErrCodeTooManyRequests,
			"Too many login attempts, try again later", nil)
		return
	}

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"username and password are required", nil)
		return
	}

	if !h.deps.Verifier.Verify(req.Username, req.Password) {
		h.security.LogLoginFailure(req.Username, "jwt", clientIP(r), r.UserAgent(), "invalid credentials")
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized,
			"Invalid username or password", nil)
		return
	}

	token, err := h.deps.JWT.GenerateToken(req.Username, "admin")
	if err != nil {
		logging.Error().Err(err).Msg("Token generation failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError,
			"Could not issue a token", nil)
		return
	}

	h.security.LogLoginSuccess(req.Username, req.Username, "jwt", clientIP(r), r.UserAgent())
	respondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.deps.JWT.SessionTimeout()),
	})
}

// clientIP returns the remote address without the port. RealIP middleware
// has already rewritten RemoteAddr when the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
