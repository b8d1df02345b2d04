// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package ingest implements the swipe event pipeline.
//
// Swipes arrive at the HTTP API, are published to an embedded NATS JetStream
// stream, and are consumed by a Watermill router that batches them into the
// DuckDB interaction store. JetStream gives the pipeline durability across
// restarts; message IDs double as idempotency keys end to end, so at-least-
// once delivery collapses to exactly-once persistence.
//
// Components:
//   - EmbeddedServer: in-process NATS server with JetStream enabled
//   - StreamManager: provisions the SWIPES stream
//   - Publisher / Subscriber: Watermill NATS transports
//   - Router: retry, throttle, dedup and poison-queue middleware
//   - Appender: batch buffer in front of the interaction store
//   - SwipeHandler: decode, persist, and trigger pool refinement
package ingest
