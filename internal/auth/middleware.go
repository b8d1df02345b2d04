// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/reposcout/internal/logging"
)

type contextKey string

// ClaimsContextKey is the request context key holding the validated claims.
const ClaimsContextKey contextKey = "claims"

// AnonymousUserID identifies requests when authentication is disabled.
const AnonymousUserID = "anonymous"

// Middleware enforces bearer token authentication on chi route groups.
type Middleware struct {
	jwtManager  *JWTManager
	authMode    string
	defaultRole string
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil only when authMode is "none".
func NewMiddleware(jwtManager *JWTManager, authMode, defaultRole string) *Middleware {
	if defaultRole == "" {
		defaultRole = "viewer"
	}
	return &Middleware{
		jwtManager:  jwtManager,
		authMode:    authMode,
		defaultRole: defaultRole,
	}
}

// Authenticate validates the bearer token and injects claims into the
// request context. With auth mode "none", requests run as the anonymous
// admin so single-user deployments work without tokens.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == "none" {
			claims := &Claims{UserID: AnonymousUserID, Role: "admin"}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token, err := extractBearerToken(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Debug().Err(err).Msg("token validation failed")
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		if claims.Role == "" {
			claims.Role = m.defaultRole
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken reads the token from the Authorization header, falling
// back to the "token" cookie for browser clients.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", fmt.Errorf("unauthorized: missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("unauthorized: invalid authorization header")
	}

	return parts[1], nil
}

// ClaimsFromContext returns the validated claims for the request, or nil if
// the request did not pass through Authenticate.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}
