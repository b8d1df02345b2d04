// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package models defines data structures shared across the Reposcout application.

It is the single source of truth for the canonical value types that flow
between the recommendation core, the stores, the ingestion pipeline and the
HTTP surface.

Model Categories:

 1. Domain Models:
    - Repository: immutable snapshot of a remote repository at fetch time
    - AuxSignals: auxiliary health signals fetched alongside a repository
    - HealthScore: six-factor quality assessment with letter grade
    - UserPreferences: per-user discovery preferences and weighting knobs
    - InteractionRecord: append-only swipe/interaction event
    - InteractionSummary: per-tag aggregate of interaction history

 2. API Request/Response Models:
    - APIResponse: standard response wrapper
    - APIError: structured error details
    - Metadata: response metadata (timestamp, query time, cache flag)

Repository values are never mutated after construction; a re-fetch produces a
new snapshot. HealthScore is derived on demand and never persisted as part of
the Repository itself.
*/
package models
