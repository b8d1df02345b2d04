// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package api provides the HTTP surface of Reposcout.
//
// Routing is built on chi with middleware from its ecosystem: go-chi/cors
// for CORS, go-chi/httprate for per-IP rate limiting, and chi's RequestID
// integrated with the logging package for request tracing. Authentication
// (internal/auth) and authorization (internal/authz) are applied to the
// /api/v1 route group; the login and health endpoints sit outside it.
//
// All endpoints respond with the models.APIResponse envelope. Handlers
// depend on narrow interfaces (RecommendService, PreferenceStore,
// SwipePublisher, ClusterAdmin) so they can be exercised against fakes.
package api
