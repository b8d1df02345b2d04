// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package main is the entry point for the Reposcout server.

Reposcout is a self-hosted repository discovery engine. It serves swipeable
GitHub repository recommendations, ingests the swipes through a durable
event pipeline, and folds them back into candidate ranking.

# Application Architecture

The server initializes components in the following order:

 1. Configuration: layered loading from environment variables, config file,
    and built-in defaults (Koanf v2)
 2. Interaction store: DuckDB holding swipe history and repository snapshots
 3. Preference store: BadgerDB holding per-user preference records
 4. Search client: rate-limited GitHub client with retries and caching
 5. Recommendation stack: scorer, cluster index, candidate pools,
    comparison engine, and the tiered engine on top
 6. Ingestion (optional): embedded NATS JetStream server, swipe publisher,
    durable consumer, and the batch appender
 7. Authentication: JWT or no-auth mode, plus Casbin role policy
 8. HTTP server: REST API with Swagger documentation

Everything long-running is supervised by a suture tree with three layers
(data, messaging, api) so a crash in one layer restarts only that layer.

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority
wins):

  - Environment variables (see the mapping table in internal/config)
  - Config file (config.yaml)
  - Built-in defaults

A GitHub token is optional but strongly recommended:

  - GITHUB_TOKEN: personal access token; raises the search quota from
    10 to 30 requests per minute

For JWT authentication:

  - JWT_SECRET: 32+ character secret for token signing
  - ADMIN_USERNAME: admin username
  - ADMIN_PASSWORD: admin password (8+ characters)

Swipe ingestion:

  - NATS_ENABLED=true enables the pipeline
  - NATS_EMBEDDED=true runs JetStream in process; otherwise
    NATS_URL points at an external server

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

  - Stops accepting new connections
  - Waits for in-flight requests to complete (10s timeout)
  - Drains the ingest router and flushes the appender
  - Closes the preference store and database

# Example Usage

Development, no auth, ephemeral ingestion:

	export AUTH_MODE=none
	export NATS_ENABLED=true
	export NATS_EMBEDDED=true
	./reposcout

Production with JWT and a GitHub token:

	export GITHUB_TOKEN=ghp_your-token
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD=secure-password
	export NATS_ENABLED=true
	export NATS_EMBEDDED=true
	export NATS_STORE_DIR=/data/nats
	./reposcout
*/
package main
