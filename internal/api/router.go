// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/authz"
	"github.com/tomtom215/reposcout/internal/middleware"
)

// Router assembles the chi route tree from the handler set and the
// middleware stack.
type Router struct {
	handler *Handler
	mw      *Middleware
	authMW  *auth.Middleware
	authzMW *authz.Middleware
}

// NewRouter creates the router. The auth middleware decides whether
// requests carry real or anonymous claims; the authz middleware enforces
// role policy on everything under /api/v1 except login and health.
func NewRouter(handler *Handler, mw *Middleware, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	return &Router{
		handler: handler,
		mw:      mw,
		authMW:  authMW,
		authzMW: authzMW,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup builds the full route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route. CORS sits here so OPTIONS
	// preflight is answered before route matching.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.mw.CORS())

	// Health endpoints: permissive rate limit, no auth. Monitoring must
	// reach these even when the token store is misconfigured.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.mw.RateLimitHealth())
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	// Login: strictest rate limit, no auth middleware. The handler has
	// its own per-IP limiter on top for brute force protection.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rt.mw.RateLimitLogin()).Post("/login", rt.handler.Login)
	})

	// Data endpoints: rate limited, instrumented, authenticated, and
	// authorized against the role policy.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.mw.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(rt.authMW.Authenticate)
		r.Use(rt.authzMW.AuthorizeRequest)

		r.Get("/recommendations", rt.handler.Recommendations)
		r.Get("/repos/{id}/health", rt.handler.RepoHealth)
		r.Post("/compare", rt.handler.Compare)
		r.Post("/swipes", rt.handler.Swipe)

		r.Get("/preferences", rt.handler.GetPreferences)
		r.Put("/preferences", rt.handler.PutPreferences)

		r.Post("/pool/refresh", rt.handler.RefreshPool)
		r.Delete("/pool", rt.handler.ClearPool)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/cluster/status", rt.handler.ClusterStatus)
			r.Post("/cluster/rebuild", rt.handler.ClusterRebuild)
		})
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
