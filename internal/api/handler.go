// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/config"
	"github.com/tomtom215/reposcout/internal/ingest"
	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/recommend"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/compare"
)

// RecommendService is the slice of the recommendation engine the handlers
// call.
type RecommendService interface {
	GetRecommendations(ctx context.Context, userID string, count int) (*recommend.Set, error)
	GetHealthReport(ctx context.Context, repoID int64) (*recommend.HealthReport, error)
	Compare(ctx context.Context, repoIDs []int64) (*compare.Result, error)
	RefreshPool(ctx context.Context, userID string) error
	ClearPool(userID string)
}

// PreferenceStore reads and writes per-user preferences.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (models.UserPreferences, error)
	Set(ctx context.Context, userID string, prefs models.UserPreferences) error
}

// SwipePublisher hands swipe events to the ingest pipeline.
type SwipePublisher interface {
	PublishEvent(ctx context.Context, event *ingest.SwipeEvent) error
}

// ClusterAdmin exposes cluster shortlist state and rebuilds for the admin
// endpoints.
type ClusterAdmin interface {
	Status() map[string]cluster.ClusterStatus
	RebuildAll(ctx context.Context) error
}

// Pinger reports storage connectivity for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies collects everything the handlers need. Publisher and
// Clusters may be nil: swipe ingestion then answers 503 and the admin
// cluster endpoints 404.
type Dependencies struct {
	Recommend   RecommendService
	Preferences PreferenceStore
	Publisher   SwipePublisher
	Clusters    ClusterAdmin
	DB          Pinger

	JWT      *auth.JWTManager
	Verifier *auth.CredentialVerifier
	Logins   *auth.LoginLimiter
}

// Handler holds the HTTP handler methods and their dependencies.
type Handler struct {
	cfg       *config.Config
	deps      Dependencies
	validate  *validator.Validate
	security  *logging.SecurityLogger
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(cfg *config.Config, deps Dependencies) (*Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Recommend == nil {
		return nil, fmt.Errorf("recommendation service is required")
	}
	if deps.Preferences == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	return &Handler{
		cfg:       cfg,
		deps:      deps,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		security:  logging.NewSecurityLogger(),
		startTime: time.Now(),
	}, nil
}

// userID extracts the authenticated user from the request context. The
// auth middleware guarantees claims are present on protected routes.
func userID(ctx context.Context) string {
	if claims := auth.ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return auth.AnonymousUserID
}
