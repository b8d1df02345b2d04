// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package authz

import (
	"net/http"

	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/logging"
)

// Middleware enforces authorization decisions on chi route groups. It runs
// after auth.Middleware.Authenticate, which supplies the claims.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates an authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize enforces a fixed object/action pair for every request passing
// through.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.enforce(w, r, object, action) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeRequest derives the object from the request path and the action
// from the HTTP method.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enforce(w, r, r.URL.Path, methodToAction(r.Method)) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// enforce runs the decision and writes the error response on denial.
// Returns true when the request may proceed.
func (m *Middleware) enforce(w http.ResponseWriter, r *http.Request, object, action string) bool {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
		return false
	}

	allowed, err := m.enforcer.EnforceForUser(claims.UserID, claims.Role, object, action)
	if err != nil {
		logging.Error().Err(err).Msg("authorization error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return false
	}

	if !allowed {
		logging.Debug().
			Str("user_id", claims.UserID).
			Str("role", claims.Role).
			Str("object", object).
			Str("action", action).
			Msg("authorization denied")
		http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		return false
	}

	return true
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
