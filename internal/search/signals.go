// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v66/github"
	"github.com/remeh/sizedwaitgroup"

	"github.com/tomtom215/reposcout/internal/cache"
	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/breaker"
)

// maxSignalFetches bounds concurrent signal sub-fetches per repository.
const maxSignalFetches = 4

// Signals fetches the auxiliary health inputs for a repository: contributor
// and release counts, commit activity over the last year, and the issue close
// rate. The four sub-fetches run concurrently and degrade independently; a
// failed sub-fetch leaves its zero value. Only when every sub-fetch fails is
// an error returned.
func (c *Client) Signals(ctx context.Context, repo *models.Repository) (*models.AuxSignals, error) {
	if repo == nil {
		return nil, fmt.Errorf("signals: repository is required")
	}
	owner, name, ok := splitFullName(repo.FullName)
	if !ok {
		return nil, fmt.Errorf("signals: malformed full name %q", repo.FullName)
	}

	key := cache.GenerateKey("signals", repo.FullName)
	if v, found := c.cache.Get(key); found {
		if sig, valid := v.(*models.AuxSignals); valid {
			metrics.CacheHits.WithLabelValues(cacheKindSignals).Inc()
			return sig, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(cacheKindSignals).Inc()

	var sig models.AuxSignals
	var errs [4]error

	// Each goroutine writes a distinct field and error slot, so no mutex is
	// needed around the result.
	swg := sizedwaitgroup.New(maxSignalFetches)

	swg.Add()
	go func() {
		defer swg.Done()
		sig.Contributors, errs[0] = c.contributorCount(ctx, owner, name)
	}()

	swg.Add()
	go func() {
		defer swg.Done()
		sig.Releases, errs[1] = c.releaseCount(ctx, owner, name)
	}()

	swg.Add()
	go func() {
		defer swg.Done()
		sig.CommitsLastYear, errs[2] = c.commitsLastYear(ctx, owner, name)
	}()

	swg.Add()
	go func() {
		defer swg.Done()
		sig.IssueCloseRate, errs[3] = c.issueCloseRate(ctx, repo.FullName, repo.OpenIssues)
	}()

	swg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			c.logger.Debug().Err(err).Str("repository", repo.FullName).Msg("Signal sub-fetch failed")
		}
	}
	if failed == len(errs) {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	c.storeCache(key, &sig)
	return &sig, nil
}

// contributorCount returns the number of contributors, anonymous included.
// With one item per page, the last page index in the Link header is the
// total; responses without pagination fall back to the item count.
func (c *Client) contributorCount(ctx context.Context, owner, name string) (int, error) {
	var total int
	_, err := c.call(ctx, "contributors", func() (interface{}, *github.Response, error) {
		opts := &github.ListContributorsOptions{
			Anon:        "true",
			ListOptions: github.ListOptions{PerPage: 1},
		}
		items, resp, err := c.gh.Repositories.ListContributors(ctx, owner, name, opts)
		if err != nil {
			return nil, resp, err
		}
		if resp != nil && resp.LastPage > 0 {
			total = resp.LastPage
		} else {
			total = len(items)
		}
		return items, resp, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// releaseCount returns the number of published releases, using the same
// pagination trick as contributorCount.
func (c *Client) releaseCount(ctx context.Context, owner, name string) (int, error) {
	var total int
	_, err := c.call(ctx, "releases", func() (interface{}, *github.Response, error) {
		opts := &github.ListOptions{PerPage: 1}
		items, resp, err := c.gh.Repositories.ListReleases(ctx, owner, name, opts)
		if err != nil {
			return nil, resp, err
		}
		if resp != nil && resp.LastPage > 0 {
			total = resp.LastPage
		} else {
			total = len(items)
		}
		return items, resp, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// commitsLastYear sums the 52-week commit activity. GitHub answers 202 while
// the statistics are being computed; that reads as zero commits rather than a
// failure, since the next fetch will see the cached result.
func (c *Client) commitsLastYear(ctx context.Context, owner, name string) (int, error) {
	var total int
	_, err := c.call(ctx, "commit_activity", func() (interface{}, *github.Response, error) {
		weeks, resp, err := c.gh.Repositories.ListCommitActivity(ctx, owner, name)
		if err != nil {
			var accepted *github.AcceptedError
			if errors.As(err, &accepted) {
				total = 0
				return []*github.WeeklyCommitActivity{}, resp, nil
			}
			return nil, resp, err
		}
		total = 0
		for _, week := range weeks {
			total += week.GetTotal()
		}
		return weeks, resp, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// issueCloseRate computes closed/(closed+open) from an issue search. A nil
// rate means the repository never had issues, which scoring excludes rather
// than penalizes.
func (c *Client) issueCloseRate(ctx context.Context, fullName string, openIssues int) (*float64, error) {
	var closed int
	raw, err := c.call(ctx, "issue_close_rate", func() (interface{}, *github.Response, error) {
		opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
		res, resp, err := c.gh.Search.Issues(ctx, buildClosedIssuesQuery(fullName), opts)
		return res, resp, err
	})
	result, err := breaker.CastResult[github.IssuesSearchResult](raw, err)
	if err != nil {
		return nil, err
	}
	closed = result.GetTotal()

	if closed+openIssues == 0 {
		return nil, nil
	}
	rate := float64(closed) / float64(closed+openIssues)
	return &rate, nil
}
