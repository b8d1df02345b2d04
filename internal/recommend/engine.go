// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/preferences"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/compare"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
	"github.com/tomtom215/reposcout/internal/search"
)

// maxComparisonFetches bounds parallel repository lookups during a comparison.
const maxComparisonFetches = 4

// SearchService is the remote repository source the engine depends on.
// The production implementation lives in internal/search; tests substitute
// an in-memory fake.
type SearchService interface {
	// Search returns one page of repositories matching the query.
	Search(ctx context.Context, query models.SearchQuery, page int) ([]models.Repository, error)

	// Trending returns recently created repositories ranked by stars.
	Trending(ctx context.Context, query models.TrendingQuery) ([]models.Repository, error)

	// GetRepository resolves a single repository by its numeric ID.
	GetRepository(ctx context.Context, id int64) (*models.Repository, error)

	// Signals fetches the slower auxiliary metrics for a repository.
	Signals(ctx context.Context, repo *models.Repository) (*models.AuxSignals, error)
}

// PreferenceStore supplies stored user preferences. A missing record is
// reported via preferences.ErrNotFound and degrades to defaults.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (models.UserPreferences, error)
}

// InteractionStore supplies a user's swipe history. Failures here degrade
// personalization but never fail a recommendation request.
type InteractionStore interface {
	// SeenIDs returns every repository ID the user has already swiped on.
	SeenIDs(ctx context.Context, userID string) (map[int64]struct{}, error)

	// SavedRepos returns repositories the user saved, most recent first.
	SavedRepos(ctx context.Context, userID string) ([]models.Repository, error)

	// LikedRepos returns repositories the user liked, most recent first.
	LikedRepos(ctx context.Context, userID string) ([]models.Repository, error)

	// TagSummaries returns per-tag interaction counts for pool refinement.
	TagSummaries(ctx context.Context, userID string) ([]models.InteractionSummary, error)
}

// HybridSource finds repositories related to a set of seed repositories.
// It is optional; when absent the hybrid tier is skipped.
type HybridSource interface {
	Related(ctx context.Context, seeds []models.Repository, limit int) ([]models.Repository, error)
}

// Dependencies bundles the collaborators an Engine requires.
type Dependencies struct {
	Search       SearchService
	Preferences  PreferenceStore
	Interactions InteractionStore
	Scorer       *scoring.Scorer
	Clusters     *cluster.Index
	Pool         *pool.Manager
	Comparer     *compare.Engine
}

func (d *Dependencies) validate() error {
	switch {
	case d.Search == nil:
		return fmt.Errorf("search service is required")
	case d.Preferences == nil:
		return fmt.Errorf("preference store is required")
	case d.Interactions == nil:
		return fmt.Errorf("interaction store is required")
	case d.Scorer == nil:
		return fmt.Errorf("scorer is required")
	case d.Clusters == nil:
		return fmt.Errorf("cluster index is required")
	case d.Pool == nil:
		return fmt.Errorf("pool manager is required")
	case d.Comparer == nil:
		return fmt.Errorf("comparison engine is required")
	}
	return nil
}

// tierRequest carries the per-request state threaded through the tiers.
// The exclude set grows as tiers contribute so later tiers never repeat
// earlier results.
type tierRequest struct {
	userID    string
	prefs     *models.UserPreferences
	count     int
	need      int
	exclude   map[int64]struct{}
	seen      map[int64]struct{}
	saved     []models.Repository
	liked     []models.Repository
	summaries []models.InteractionSummary
}

// tierRunner is one step of the recommendation cascade. A false second
// return means the tier could not run at all (missing collaborator, remote
// failure); an empty slice with true means it ran and found nothing.
type tierRunner struct {
	name  Tier
	floor int
	run   func(ctx context.Context, req *tierRequest) ([]models.Repository, bool)
}

// Engine orchestrates the recommendation cascade and the single-repository
// operations built on top of it.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	search   SearchService
	prefs    PreferenceStore
	store    InteractionStore
	scorer   *scoring.Scorer
	clusters *cluster.Index
	pool     *pool.Manager
	comparer *compare.Engine
	hybrid   HybridSource

	tiers []tierRunner
}

// NewEngine creates a recommendation engine, applying defaults for
// zero-valued config fields.
func NewEngine(cfg Config, deps Dependencies, logger *zerolog.Logger) (*Engine, error) {
	def := DefaultConfig()
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = def.DefaultCount
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = def.MaxCount
	}
	if cfg.StarCap == 0 {
		cfg.StarCap = def.StarCap
	}
	if cfg.TierTimeout == 0 {
		cfg.TierTimeout = def.TierTimeout
	}
	if cfg.PoolFloor == 0 {
		cfg.PoolFloor = def.PoolFloor
	}
	if cfg.ClusterFloor == 0 {
		cfg.ClusterFloor = def.ClusterFloor
	}
	if cfg.HybridFloor == 0 {
		cfg.HybridFloor = def.HybridFloor
	}
	if cfg.HybridSeeds == 0 {
		cfg.HybridSeeds = def.HybridSeeds
	}
	if cfg.TrendingWindow == 0 {
		cfg.TrendingWindow = def.TrendingWindow
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		search:   deps.Search,
		prefs:    deps.Preferences,
		store:    deps.Interactions,
		scorer:   deps.Scorer,
		clusters: deps.Clusters,
		pool:     deps.Pool,
		comparer: deps.Comparer,
	}
	e.tiers = []tierRunner{
		{name: TierPool, floor: cfg.PoolFloor, run: e.poolTier},
		{name: TierCluster, floor: cfg.ClusterFloor, run: e.clusterTier},
		{name: TierHybrid, floor: cfg.HybridFloor, run: e.hybridTier},
		{name: TierTrending, floor: 0, run: e.trendingTier},
	}
	return e, nil
}

// SetHybridSource installs the optional related-repositories source. Until
// one is set the hybrid tier is skipped.
func (e *Engine) SetHybridSource(h HybridSource) {
	e.hybrid = h
}

// GetRecommendations produces up to count recommendations for a user by
// walking the tier cascade. It degrades rather than fails: missing
// preferences fall back to defaults, tier errors skip the tier, and total
// exhaustion yields an empty Set with a nil error.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, count int) (*Set, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	count = e.clampCount(count)
	logger := e.logger.With().Str("user_id", userID).Int("count", count).Logger()

	prefsVal := e.loadPreferences(ctx, userID, logger)
	req := e.buildRequest(ctx, userID, &prefsVal, count, logger)

	items := make([]Item, 0, count)
	degraded := false
	for _, t := range e.tiers {
		req.need = count - len(items)
		repos, ok := t.run(ctx, req)
		if !ok {
			logger.Debug().Str("tier", string(t.name)).Msg("Tier skipped")
			continue
		}

		before := len(items)
		items = e.merge(items, t.name, repos, req)
		served := len(items) - before
		metrics.RecordRecommendationsServed(string(t.name), served)
		if t.name == TierTrending && served > 0 {
			degraded = true
		}

		if len(items) >= count {
			break
		}
		if t.floor > 0 && len(items) >= t.floor {
			logger.Debug().
				Str("tier", string(t.name)).
				Int("items", len(items)).
				Msg("Floor reached, stopping cascade")
			break
		}
	}

	if len(items) == 0 {
		metrics.RecommendationEmpty.Inc()
		logger.Info().Msg("All tiers exhausted, returning empty set")
	}
	if degraded {
		logger.Warn().Int("items", len(items)).Msg("Personalized tiers exhausted, served trending results")
	}

	return &Set{Items: items, Degraded: degraded, GeneratedAt: time.Now()}, nil
}

// GetHealthReport fetches a repository, enriches it with auxiliary signals
// and scores it. A signal fetch failure yields a partial report; a failed
// repository fetch is the one error this operation surfaces.
func (e *Engine) GetHealthReport(ctx context.Context, repoID int64) (*HealthReport, error) {
	rctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()

	repo, err := e.search.GetRepository(rctx, repoID)
	if err != nil {
		return nil, e.wrapSearchErr(err, "fetch repository")
	}

	report := &HealthReport{Repository: *repo, GeneratedAt: time.Now()}

	signals, err := e.search.Signals(rctx, repo)
	if err != nil {
		e.logger.Warn().Err(err).Int64("repo_id", repoID).Msg("Signal fetch failed, scoring snapshot only")
		report.Partial = true
	} else {
		report.Signals = signals
	}

	report.Score = e.scorer.Score(repo, report.Signals)
	metrics.HealthReports.Inc()
	return report, nil
}

// Compare resolves the requested repositories and runs a head-to-head
// comparison. Repositories that cannot be resolved are dropped with a log
// line; the comparison proceeds as long as two remain.
func (e *Engine) Compare(ctx context.Context, repoIDs []int64) (*compare.Result, error) {
	ids := dedupeIDs(repoIDs)
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: got %d distinct repositories", ErrInsufficientInput, len(ids))
	}

	cctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()

	inputs := e.resolveComparisonInputs(cctx, ids)
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: resolved %d of %d repositories", ErrInsufficientInput, len(inputs), len(ids))
	}

	result, err := e.comparer.Compare(inputs)
	if err != nil {
		if errors.Is(err, compare.ErrInsufficientInput) {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientInput, err)
		}
		return nil, fmt.Errorf("compare repositories: %w", err)
	}
	return result, nil
}

// RefreshPool discards a user's candidate pool and rebuilds it from the
// remote source using their current preferences.
func (e *Engine) RefreshPool(ctx context.Context, userID string) error {
	logger := e.logger.With().Str("user_id", userID).Logger()

	prefsVal := e.loadPreferences(ctx, userID, logger)
	seen, err := e.store.SeenIDs(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("Seen-ID load failed, rebuilding without exclusions")
	}

	e.pool.ClearPool(userID)

	bctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()
	if err := e.pool.BuildPool(bctx, userID, &prefsVal, seen); err != nil {
		return e.wrapSearchErr(err, "rebuild pool")
	}
	return nil
}

// ClearPool drops a user's candidate pool without rebuilding it. The next
// recommendation request triggers a fresh build.
func (e *Engine) ClearPool(userID string) {
	e.pool.ClearPool(userID)
}

// clampCount normalizes the requested result count into [1, MaxCount].
func (e *Engine) clampCount(count int) int {
	if count <= 0 {
		return e.cfg.DefaultCount
	}
	if count > e.cfg.MaxCount {
		return e.cfg.MaxCount
	}
	return count
}

// loadPreferences returns the user's stored preferences, falling back to
// defaults on any failure. A missing record is the expected cold-start case
// and logs at debug; real store failures log at warn.
func (e *Engine) loadPreferences(ctx context.Context, userID string, logger zerolog.Logger) models.UserPreferences {
	prefsVal, err := e.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, preferences.ErrNotFound) {
			logger.Debug().Msg("No stored preferences, using defaults")
		} else {
			logger.Warn().Err(err).Msg("Preference load failed, using defaults")
		}
		return models.DefaultPreferences()
	}
	return prefsVal
}

// buildRequest gathers the user's interaction history in parallel and seeds
// the exclusion set with every repository they have already seen. Each
// goroutine writes a distinct field, so no lock is needed beyond the wait.
func (e *Engine) buildRequest(ctx context.Context, userID string, prefs *models.UserPreferences, count int, logger zerolog.Logger) *tierRequest {
	req := &tierRequest{userID: userID, prefs: prefs, count: count}

	swg := sizedwaitgroup.New(4)
	swg.Add()
	go func() {
		defer swg.Done()
		ids, err := e.store.SeenIDs(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("Seen-ID load failed, exclusions degraded")
			return
		}
		req.seen = ids
	}()
	swg.Add()
	go func() {
		defer swg.Done()
		repos, err := e.store.SavedRepos(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("Saved-repository load failed")
			return
		}
		req.saved = repos
	}()
	swg.Add()
	go func() {
		defer swg.Done()
		repos, err := e.store.LikedRepos(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("Liked-repository load failed")
			return
		}
		req.liked = repos
	}()
	swg.Add()
	go func() {
		defer swg.Done()
		summaries, err := e.store.TagSummaries(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("Tag-summary load failed")
			return
		}
		req.summaries = summaries
	}()
	swg.Wait()

	req.exclude = make(map[int64]struct{}, len(req.seen)+count)
	for id := range req.seen {
		req.exclude[id] = struct{}{}
	}
	return req
}

// merge appends new repositories to the accumulated items, skipping
// anything already excluded or over the popularity cap, until the request
// count is satisfied. Accepted IDs join the exclusion set.
func (e *Engine) merge(items []Item, tier Tier, repos []models.Repository, req *tierRequest) []Item {
	for i := range repos {
		if len(items) >= req.count {
			break
		}
		repo := repos[i]
		if _, dup := req.exclude[repo.ID]; dup {
			continue
		}
		if e.overCap(&repo, req.prefs) {
			continue
		}
		req.exclude[repo.ID] = struct{}{}
		items = append(items, Item{
			Repository: repo,
			Tier:       tier,
			Score:      e.scorer.QuickScore(&repo),
		})
	}
	return items
}

// overCap reports whether a repository exceeds the popularity cap for this
// user. Users who explicitly prefer popular repositories are exempt.
func (e *Engine) overCap(repo *models.Repository, prefs *models.UserPreferences) bool {
	if prefs.WantsHighPopularity() {
		return false
	}
	return repo.Stars > e.cfg.StarCap
}

// poolTier serves from the per-user candidate pool, building it first if
// needed. A failed build still drains whatever a previous fill left behind.
func (e *Engine) poolTier(ctx context.Context, req *tierRequest) ([]models.Repository, bool) {
	bctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()

	if err := e.pool.BuildPool(bctx, req.userID, req.prefs, req.seen); err != nil {
		e.logger.Warn().Err(err).Str("user_id", req.userID).Msg("Pool build failed, draining existing entries")
	}
	if len(req.summaries) > 0 {
		e.pool.RefinePoolBasedOnInteractions(req.userID, req.summaries)
	}
	return e.pool.GetRecommendations(req.userID, req.prefs, req.need, req.exclude), true
}

// clusterTier serves from the precomputed shortlist of the user's primary
// interest cluster. Entirely local, so no timeout applies.
func (e *Engine) clusterTier(_ context.Context, req *tierRequest) ([]models.Repository, bool) {
	id := e.clusters.DetectPrimaryCluster(req.prefs)
	metrics.ClusterDetections.WithLabelValues(string(id)).Inc()
	return e.clusters.GetBestOfCluster(id, req.need, req.exclude, req.userID), true
}

// hybridTier asks the related-repositories source for neighbors of the
// user's saved and liked repositories. Skipped when no source is installed
// or the user has no positive history to seed from.
func (e *Engine) hybridTier(ctx context.Context, req *tierRequest) ([]models.Repository, bool) {
	if e.hybrid == nil {
		return nil, false
	}
	seeds := e.hybridSeeds(req)
	if len(seeds) == 0 {
		return nil, false
	}

	hctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()

	repos, err := e.hybrid.Related(hctx, seeds, req.need*2)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", req.userID).Msg("Related-repository lookup failed")
		return nil, false
	}
	return repos, true
}

// hybridSeeds picks seed repositories for the hybrid tier, preferring saves
// over likes since saving is the stronger signal.
func (e *Engine) hybridSeeds(req *tierRequest) []models.Repository {
	seeds := make([]models.Repository, 0, e.cfg.HybridSeeds)
	for i := range req.saved {
		if len(seeds) >= e.cfg.HybridSeeds {
			return seeds
		}
		seeds = append(seeds, req.saved[i])
	}
	for i := range req.liked {
		if len(seeds) >= e.cfg.HybridSeeds {
			return seeds
		}
		seeds = append(seeds, req.liked[i])
	}
	return seeds
}

// trendingTier is the non-personalized last resort: recently created
// repositories ranked by stars, optionally narrowed by the user's languages.
func (e *Engine) trendingTier(ctx context.Context, req *tierRequest) ([]models.Repository, bool) {
	tctx, cancel := context.WithTimeout(ctx, e.cfg.TierTimeout)
	defer cancel()

	repos, err := e.search.Trending(tctx, models.TrendingQuery{
		Window:    e.cfg.TrendingWindow,
		Languages: req.prefs.Languages,
		Limit:     req.need * 3,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", req.userID).Msg("Trending fetch failed")
		return nil, false
	}
	return repos, true
}

// resolveComparisonInputs fetches each repository and its signals in
// parallel, preserving input order. Unresolvable repositories are dropped;
// missing signals degrade that entry to a snapshot-only score.
func (e *Engine) resolveComparisonInputs(ctx context.Context, ids []int64) []compare.Input {
	type slot struct {
		input compare.Input
		ok    bool
	}
	slots := make([]slot, len(ids))

	swg := sizedwaitgroup.New(maxComparisonFetches)
	for i, id := range ids {
		swg.Add()
		go func(i int, id int64) {
			defer swg.Done()

			repo, err := e.search.GetRepository(ctx, id)
			if err != nil {
				e.logger.Warn().Err(err).Int64("repo_id", id).Msg("Comparison fetch failed, dropping repository")
				return
			}
			signals, err := e.search.Signals(ctx, repo)
			if err != nil {
				e.logger.Debug().Err(err).Int64("repo_id", id).Msg("Comparison signals unavailable")
				signals = nil
			}
			slots[i] = slot{input: compare.Input{Repo: *repo, Signals: signals}, ok: true}
		}(i, id)
	}
	swg.Wait()

	inputs := make([]compare.Input, 0, len(ids))
	for _, s := range slots {
		if s.ok {
			inputs = append(inputs, s.input)
		}
	}
	return inputs
}

// wrapSearchErr maps remote-source failures onto the package sentinels so
// callers can distinguish a missing repository from an unavailable source.
func (e *Engine) wrapSearchErr(err error, op string) error {
	switch {
	case errors.Is(err, search.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, search.ErrUnavailable), errors.Is(err, search.ErrRateLimited):
		return fmt.Errorf("%s: %w", op, ErrRemoteUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// dedupeIDs removes duplicate IDs preserving first occurrence.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
