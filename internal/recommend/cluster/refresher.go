// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package cluster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
)

// Searcher is the slice of the remote search service the refresher needs.
type Searcher interface {
	Search(ctx context.Context, query models.SearchQuery, page int) ([]models.Repository, error)
}

// Scorer ranks fetched repositories for shortlist ordering.
type Scorer interface {
	QuickScore(repo *models.Repository) float64
}

// refreshPages is how many result pages each cluster rebuild fetches.
const refreshPages = 2

// Refresher rebuilds cluster shortlists from the remote search service.
// It runs out of band: periodically from the supervision tree and on demand
// from the admin API. The index stays serving throughout; each cluster's
// shortlist is swapped atomically once its fetch completes.
type Refresher struct {
	index  *Index
	search Searcher
	scorer Scorer
	logger zerolog.Logger
}

// NewRefresher creates a shortlist refresher for the given index.
func NewRefresher(index *Index, search Searcher, scorer Scorer, logger *zerolog.Logger) (*Refresher, error) {
	if index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if search == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	return &Refresher{
		index:  index,
		search: search,
		scorer: scorer,
		logger: logger.With().Str("component", "cluster-refresh").Logger(),
	}, nil
}

// RebuildAll rebuilds every cluster's shortlist. A cluster whose fetch
// fails keeps its previous shortlist; the errors are joined and returned
// after all clusters have been attempted.
func (r *Refresher) RebuildAll(ctx context.Context) error {
	var errs []error
	for _, def := range r.index.Definitions() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := r.RebuildCluster(ctx, def); err != nil {
			r.logger.Warn().
				Err(err).
				Str("cluster", def.ID).
				Msg("Shortlist rebuild failed, keeping previous shortlist")
			metrics.RecordClusterRebuild(def.ID, 0, err)
			errs = append(errs, fmt.Errorf("cluster %s: %w", def.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RebuildCluster fetches, scores and installs one cluster's shortlist.
func (r *Refresher) RebuildCluster(ctx context.Context, def Definition) error {
	query := queryFromDefinition(def)

	var repos []models.Repository
	for page := 1; page <= refreshPages; page++ {
		batch, err := r.search.Search(ctx, query, page)
		if err != nil {
			// A later page failing still installs what earlier pages got
			if page > 1 && len(repos) > 0 {
				r.logger.Debug().
					Err(err).
					Str("cluster", def.ID).
					Int("page", page).
					Msg("Partial shortlist fetch, using fetched pages")
				break
			}
			return fmt.Errorf("search page %d: %w", page, err)
		}
		repos = append(repos, batch...)
		if len(batch) < query.PerPage {
			break
		}
	}

	entries := make([]Entry, 0, len(repos))
	for i := range repos {
		entries = append(entries, Entry{
			Repo:  repos[i],
			Score: r.scorer.QuickScore(&repos[i]),
		})
	}

	r.index.ReplaceShortlist(ID(def.ID), entries)
	metrics.RecordClusterRebuild(def.ID, len(entries), nil)
	return nil
}

// queryFromDefinition converts a definition's query expression into a
// structured search query. Recognized terms are "topic:<tag>" and
// "stars:><n>"; anything else is treated as a keyword.
func queryFromDefinition(def Definition) models.SearchQuery {
	q := models.SearchQuery{PerPage: 50}
	for _, term := range strings.Fields(def.Query) {
		switch {
		case strings.HasPrefix(term, "topic:"):
			q.Topics = append(q.Topics, strings.TrimPrefix(term, "topic:"))
		case strings.HasPrefix(term, "stars:>"):
			if n, err := strconv.Atoi(strings.TrimPrefix(term, "stars:>")); err == nil {
				q.MinStars = n
			}
		default:
			q.Keywords = append(q.Keywords, term)
		}
	}
	return q
}
