// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ShortlistRefresher matches the cluster refresher surface.
//
// Satisfied by *cluster.Refresher.
type ShortlistRefresher interface {
	RebuildAll(ctx context.Context) error
}

// ClusterRefreshService rebuilds cluster shortlists on a schedule. Work
// errors are logged, never returned: a cluster keeping its previous
// shortlist is degraded service, not a crash.
type ClusterRefreshService struct {
	refresher ShortlistRefresher
	interval  time.Duration
	onStart   bool
	logger    zerolog.Logger
	name      string
}

// NewClusterRefreshService creates the refresh service. When onStart is
// set the first rebuild runs immediately instead of waiting one interval,
// which is what a cold start with empty shortlists wants.
func NewClusterRefreshService(refresher ShortlistRefresher, interval time.Duration, onStart bool, logger *zerolog.Logger) *ClusterRefreshService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &ClusterRefreshService{
		refresher: refresher,
		interval:  interval,
		onStart:   onStart,
		logger:    logger.With().Str("service", "cluster-refresh").Logger(),
		name:      "cluster-refresh",
	}
}

// Serve implements suture.Service.
func (s *ClusterRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Bool("rebuild_on_start", s.onStart).
		Msg("Cluster refresh service starting")

	if s.onStart {
		s.rebuild(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Cluster refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.rebuild(ctx)
		}
	}
}

func (s *ClusterRefreshService) rebuild(ctx context.Context) {
	// Bounded so a stuck remote fetch cannot block shutdown for long
	rebuildCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	start := time.Now()
	if err := s.refresher.RebuildAll(rebuildCtx); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled shortlist rebuild finished with errors")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("Shortlist rebuild complete")
}

// String implements fmt.Stringer for supervision logs.
func (s *ClusterRefreshService) String() string {
	return s.name
}

// PoolExpirer matches the candidate pool janitor surface.
//
// Satisfied by *pool.Manager.
type PoolExpirer interface {
	ExpireStale() int
	ActivePools() int
}

// PoolJanitorService expires stale candidate pools on a schedule so
// memory does not grow with every user who ever asked for a
// recommendation.
type PoolJanitorService struct {
	pools    PoolExpirer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewPoolJanitorService creates the janitor. The interval defaults to the
// pool TTL's order of magnitude; running more often than the TTL expires
// nothing extra.
func NewPoolJanitorService(pools PoolExpirer, interval time.Duration, logger *zerolog.Logger) *PoolJanitorService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PoolJanitorService{
		pools:    pools,
		interval: interval,
		logger:   logger.With().Str("service", "pool-janitor").Logger(),
		name:     "pool-janitor",
	}
}

// Serve implements suture.Service.
func (s *PoolJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			expired := s.pools.ExpireStale()
			if expired > 0 {
				s.logger.Debug().
					Int("expired", expired).
					Int("active", s.pools.ActivePools()).
					Msg("Expired stale candidate pools")
			}
		}
	}
}

// String implements fmt.Stringer for supervision logs.
func (s *PoolJanitorService) String() string {
	return s.name
}

// ValueLogGC matches the preference store GC surface.
//
// Satisfied by *preferences.Store.
type ValueLogGC interface {
	RunGC() error
}

// BadgerGCService runs badger value-log garbage collection for the
// preference store. Badger never reclaims value-log space on its own;
// something has to call RunGC periodically.
type BadgerGCService struct {
	store    ValueLogGC
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewBadgerGCService creates the GC service.
func NewBadgerGCService(store ValueLogGC, interval time.Duration, logger *zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BadgerGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "badger-gc").Logger(),
		name:     "badger-gc",
	}
}

// Serve implements suture.Service. badger.ErrNoRewrite means there was
// nothing worth collecting, which is the common case.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn().Err(err).Msg("Preference store GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervision logs.
func (s *BadgerGCService) String() string {
	return s.name
}
