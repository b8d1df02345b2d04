// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/authz"
	"github.com/tomtom215/reposcout/internal/config"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/recommend"
)

// newTestRouter wires the full route tree with auth mode "none" so every
// request runs as the anonymous admin, exercising the real authorization
// middleware against the embedded policy.
func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()

	h := newTestHandler(t, deps)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(enforcer.Close)

	authMW := auth.NewMiddleware(nil, "none", "viewer")
	mw := NewMiddleware(&MiddlewareConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	})

	return NewRouter(h, mw, authMW, authz.NewMiddleware(enforcer)).Setup()
}

func TestRouterRepoHealth(t *testing.T) {
	t.Parallel()

	report := &recommend.HealthReport{
		Repository:  models.Repository{ID: 42, FullName: "octo/cat"},
		GeneratedAt: time.Now(),
	}

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t, Dependencies{Recommend: &fakeRecommend{report: report}})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/repos/42/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t, Dependencies{Recommend: &fakeRecommend{err: recommend.ErrNotFound}})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/repos/42/health", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t, Dependencies{Recommend: &fakeRecommend{report: report}})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/repos/latest/health", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRouterRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Dependencies{Recommend: &fakeRecommend{set: &recommend.Set{}}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Dependencies{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

func TestRouterLogin(t *testing.T) {
	t.Parallel()

	secCfg := &config.SecurityConfig{
		AuthMode:       "jwt",
		JWTSecret:      "router-test-secret",
		SessionTimeout: time.Hour,
	}
	jwtManager, err := auth.NewJWTManager(secCfg)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	verifier, err := auth.NewCredentialVerifier("admin", "hunter2-but-longer")
	if err != nil {
		t.Fatalf("NewCredentialVerifier: %v", err)
	}

	router := newTestRouter(t, Dependencies{
		JWT:      jwtManager,
		Verifier: verifier,
	})

	login := func(username, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(loginRequest{Username: username, Password: password})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body)))
		return rec
	}

	rec := login("admin", "hunter2-but-longer")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data loginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("no token issued")
	}

	claims, err := jwtManager.ValidateToken(resp.Data.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.UserID != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %s/%s, want admin/admin", claims.UserID, claims.Role)
	}

	if rec := login("admin", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
	if rec := login("", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty credentials status = %d, want 400", rec.Code)
	}
}
