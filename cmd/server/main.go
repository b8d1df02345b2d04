// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/reposcout/docs" // generated swagger spec
	"github.com/tomtom215/reposcout/internal/api"
	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/authz"
	"github.com/tomtom215/reposcout/internal/config"
	"github.com/tomtom215/reposcout/internal/database"
	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/preferences"
	"github.com/tomtom215/reposcout/internal/recommend"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/compare"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
	"github.com/tomtom215/reposcout/internal/search"
	"github.com/tomtom215/reposcout/internal/supervisor"
	"github.com/tomtom215/reposcout/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("github_authenticated", cfg.GitHub.Token != "").
		Msg("Configuration loaded")

	if cfg.Security.AuthMode == "none" {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none) - every request runs as the anonymous admin")
		logging.Warn().Msg("Use AUTH_MODE=none only for local development and isolated networks")
	}
	if cfg.GitHub.Token == "" {
		logging.Warn().Msg("No GitHub token configured - search runs against the anonymous 10 req/min quota")
	}

	// Interaction store (DuckDB)
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Interaction store initialized")

	// Preference store (BadgerDB)
	prefStore, err := newPreferenceStore(&cfg.Badger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open preference store")
	}
	defer func() {
		if err := prefStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preference store")
		}
	}()

	zlog := logging.Logger()

	// GitHub search client with rate limiting, retries, and response cache
	searchClient, err := search.New(cfg.GitHub, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create GitHub search client")
	}

	// Recommendation stack
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create scorer")
	}
	clusterIndex, err := cluster.New(cfg.Cluster, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create cluster index")
	}
	refresher, err := cluster.NewRefresher(clusterIndex, searchClient, scorer, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create cluster refresher")
	}
	poolManager, err := pool.NewManager(cfg.Pool, searchClient, scorer, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create pool manager")
	}
	comparer, err := compare.NewEngine(scorer, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create comparison engine")
	}

	engine, err := recommend.NewEngine(cfg.Recommend, recommend.Dependencies{
		Search:       searchClient,
		Preferences:  prefStore,
		Interactions: db,
		Scorer:       scorer,
		Clusters:     clusterIndex,
		Pool:         poolManager,
		Comparer:     comparer,
	}, &zlog)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	engine.SetHybridSource(searchClient)
	logging.Info().Msg("Recommendation engine initialized")

	// Swipe ingestion pipeline (optional - requires NATS_ENABLED=true)
	ingestComponents, err := initIngest(cfg, db, poolManager)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize swipe ingestion")
	}
	defer ingestComponents.Close()

	// Authentication and authorization
	var jwtManager *auth.JWTManager
	var verifier *auth.CredentialVerifier
	var logins *auth.LoginLimiter
	if cfg.Security.AuthMode == "jwt" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		verifier, err = auth.NewCredentialVerifier(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize credential verifier")
		}
		logins = auth.NewLoginLimiter(5, time.Minute)
		logging.Info().Msg("JWT authentication enabled")
	}

	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, cfg.Security.Casbin.DefaultRole)

	enforcer, err := authz.NewEnforcer(authz.ConfigFromSecurity(&cfg.Security.Casbin))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	authzMW := authz.NewMiddleware(enforcer)

	// HTTP surface
	handler, err := api.NewHandler(cfg, api.Dependencies{
		Recommend:   engine,
		Preferences: prefStore,
		Publisher:   ingestComponents.SwipePublisher(),
		Clusters:    &clusterAdmin{index: clusterIndex, refresher: refresher},
		DB:          db,
		JWT:         jwtManager,
		Verifier:    verifier,
		Logins:      logins,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	router := api.NewRouter(handler, api.NewMiddleware(api.MiddlewareFromSecurity(&cfg.Security)), authMW, authzMW)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervision tree
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewBadgerGCService(prefStore, cfg.Badger.GCInterval, &zlog))
	tree.AddDataService(services.NewPoolJanitorService(poolManager, cfg.Pool.TTL/2, &zlog))

	ingestComponents.AddToTree(tree)
	tree.AddMessagingService(services.NewClusterRefreshService(refresher, cfg.Cluster.RefreshInterval, true, &zlog))

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newPreferenceStore opens the badger-backed preference store, in memory
// when configured for ephemeral deployments.
func newPreferenceStore(cfg *config.BadgerConfig) (*preferences.Store, error) {
	if cfg.InMemory {
		return preferences.NewInMemory()
	}
	return preferences.New(cfg.Dir)
}

// clusterAdmin pairs the read side of the cluster index with the rebuild
// side of the refresher behind the admin endpoints.
type clusterAdmin struct {
	index     *cluster.Index
	refresher *cluster.Refresher
}

func (c *clusterAdmin) Status() map[string]cluster.ClusterStatus { return c.index.Status() }
func (c *clusterAdmin) RebuildAll(ctx context.Context) error     { return c.refresher.RebuildAll(ctx) }
