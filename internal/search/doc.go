// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package search is the GitHub-backed repository search adapter.

It implements the remote collaborator contracts consumed by the
recommendation engine: paged repository search, trending discovery,
single-snapshot fetches, auxiliary health signals and related-repository
lookups. Everything the rest of the system knows about GitHub lives here;
callers see canonical models.Repository snapshots and the package sentinel
errors, never go-github types.

# Resilience layers

Every remote call passes through, outermost first:

 1. Response cache: an LFU cache keyed on the rendered request. Trending and
    cluster queries repeat across users while per-user pool queries are
    long-tail, so frequency-based eviction keeps the hot entries resident.
 2. Rate limiter: a token bucket (golang.org/x/time) paced below GitHub's
    search quota. Callers run under tier deadlines, so the limiter waits for
    a slot instead of failing fast; the context bounds the wait.
 3. Retry: exponential backoff (cenkalti/backoff) on rate-limit responses,
    5xx and transport failures. 4xx semantics and an open circuit are
    permanent.
 4. Circuit breaker: internal/breaker, which fails fast once GitHub is
    demonstrably unhealthy.

# Error mapping

API and transport failures fold into four sentinels so callers branch with
errors.Is: ErrNotFound (404), ErrInvalidQuery (422), ErrRateLimited
(primary or secondary rate limits after retries), ErrUnavailable (5xx,
transport failure, open circuit). Context cancellation passes through
unmapped.

# Usage

	logger := logging.Logger()
	client, err := search.New(search.Config{Token: token}, &logger)
	if err != nil {
	    return err
	}

	repos, err := client.Search(ctx, models.SearchQuery{
	    Languages: []string{"go"},
	    Topics:    []string{"cli"},
	}, 1)
*/
package search
