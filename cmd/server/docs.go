// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package main provides the Reposcout HTTP server
//
// Reposcout is a repository discovery engine that serves swipeable
// recommendations of GitHub repositories and learns from the swipes.
//
// @title Reposcout API
// @version 1.0
// @description Repository discovery and recommendation engine for GitHub.
// @description
// @description ## Features
// @description
// @description - **Tiered Recommendations**: personal candidate pool, interest clusters, related-repository expansion, and trending fallback
// @description - **Swipe Ingestion**: durable event pipeline over embedded NATS JetStream with exactly-once persistence
// @description - **Health Scores**: composite repository health from activity, maintenance, and community signals
// @description - **Comparisons**: side-by-side scoring of up to five repositories
// @description - **Preferences**: weighted per-user interests driving candidate selection
// @description
// @description ## Authentication
// @description
// @description With AUTH_MODE=jwt, obtain a token from `/api/v1/auth/login` and send it as
// @description `Authorization: Bearer <token>`. With AUTH_MODE=none every request runs as
// @description the anonymous admin.
// @description
// @description ## Rate Limiting
// @description
// @description Requests are rate limited per client IP. The login endpoint is limited
// @description separately and much more strictly.
//
// @contact.name Reposcout
// @contact.url https://github.com/tomtom215/reposcout
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT obtained from /api/v1/auth/login, sent as "Bearer {token}".
package main
