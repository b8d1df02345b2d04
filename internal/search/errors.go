// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import "errors"

var (
	// ErrNotFound indicates the requested repository does not exist on the
	// remote source, or is private.
	ErrNotFound = errors.New("repository not found")

	// ErrRateLimited indicates the remote source refused the request because
	// the rate limit is exhausted. Retrying after the reset window may succeed.
	ErrRateLimited = errors.New("search rate limit exhausted")

	// ErrUnavailable indicates the remote source could not be reached or the
	// circuit breaker is open.
	ErrUnavailable = errors.New("search service unavailable")

	// ErrInvalidQuery indicates the query could not be translated into a
	// remote search expression.
	ErrInvalidQuery = errors.New("invalid search query")
)
