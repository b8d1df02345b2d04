// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package recommend

import "errors"

// Error taxonomy at the engine boundary.
//
// Tier failures never surface: a search outage or rate limit fails the tier,
// the cascade moves on, and total exhaustion yields an empty Set rather than
// an error. A missing preference record degrades to defaults. The sentinels
// below cover the operations that DO report failure to the caller: health
// reports and comparisons, which have nothing to fall back to.
var (
	// ErrRemoteUnavailable reports that the search collaborator could not
	// serve a request (outage or rate limit) after retries.
	ErrRemoteUnavailable = errors.New("remote search service unavailable")

	// ErrInsufficientInput reports a comparison with fewer than two
	// resolvable repositories.
	ErrInsufficientInput = errors.New("comparison requires at least two resolvable repositories")

	// ErrNotFound reports a repository lookup miss.
	ErrNotFound = errors.New("repository not found")
)
