// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package pool implements the per-user candidate pool: the cached, ranked
// working set of repositories a user has not yet been shown.
//
// State model: pools live in a map keyed by user ID. Each pool carries its
// own update mutex so concurrent requests for the same user serialize while
// requests for different users never contend. A generation counter guards
// against stale fills: a build that started against generation G discards its
// results if the pool has moved past G by the time the fetch returns (the
// caller cleared or rebuilt it meanwhile).
//
// Pools are invalidated by preference change (the preference fingerprint is
// hashed into the pool key state), by explicit clear, or by TTL expiry via
// the janitor.
package pool

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
)

// Searcher is the slice of the remote search service the pool needs.
// Declared here so the pool does not depend on the adapter package.
type Searcher interface {
	Search(ctx context.Context, query models.SearchQuery, page int) ([]models.Repository, error)
}

// Config holds candidate pool tuning.
type Config struct {
	// TargetSize is how many candidates a build aims to fetch. Default: 100
	TargetSize int `koanf:"target_size" json:"target_size"`

	// PerPage is the page size for search fetches. Default: 50
	PerPage int `koanf:"per_page" json:"per_page"`

	// MaxParallelFetches bounds concurrent page fetches per build. Default: 3
	MaxParallelFetches int `koanf:"max_parallel_fetches" json:"max_parallel_fetches"`

	// LowWater marks a pool as due for refill when it shrinks below this
	// size. Default: 5
	LowWater int `koanf:"low_water" json:"low_water"`

	// TTL expires pools that have not been rebuilt. Default: 30m
	TTL time.Duration `koanf:"ttl" json:"ttl"`

	// QualityWeight and MatchWeight blend snapshot quality with preference
	// overlap into the fit score. Defaults: 0.6 / 0.4
	QualityWeight float64 `koanf:"quality_weight" json:"quality_weight"`
	MatchWeight   float64 `koanf:"match_weight" json:"match_weight"`

	// Refinement shifts per interaction, in fit points per tag occurrence.
	// Defaults: like 1.5, save 2.5, skip 2.0.
	LikeBoost   float64 `koanf:"like_boost" json:"like_boost"`
	SaveBoost   float64 `koanf:"save_boost" json:"save_boost"`
	SkipPenalty float64 `koanf:"skip_penalty" json:"skip_penalty"`

	// MaxRefineShift bounds the total refinement delta per candidate so a
	// long history cannot pin the ordering. Default: 25
	MaxRefineShift float64 `koanf:"max_refine_shift" json:"max_refine_shift"`
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		TargetSize:         100,
		PerPage:            50,
		MaxParallelFetches: 3,
		LowWater:           5,
		TTL:                30 * time.Minute,
		QualityWeight:      0.6,
		MatchWeight:        0.4,
		LikeBoost:          1.5,
		SaveBoost:          2.5,
		SkipPenalty:        2.0,
		MaxRefineShift:     25,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.TargetSize <= 0 {
		return fmt.Errorf("target_size must be positive, got %d", c.TargetSize)
	}
	if c.PerPage <= 0 || c.PerPage > c.TargetSize*2 {
		return fmt.Errorf("per_page must be in (0, 2*target_size], got %d", c.PerPage)
	}
	if c.MaxParallelFetches <= 0 {
		return fmt.Errorf("max_parallel_fetches must be positive, got %d", c.MaxParallelFetches)
	}
	if c.LowWater < 0 || c.LowWater >= c.TargetSize {
		return fmt.Errorf("low_water must be in [0, target_size), got %d", c.LowWater)
	}
	if c.QualityWeight+c.MatchWeight <= 0 {
		return fmt.Errorf("quality_weight + match_weight must be positive")
	}
	return nil
}

// entry is one pool member: a repository with its fit score.
type entry struct {
	repo models.Repository
	fit  float64
}

// userPool is the per-user state. All fields are guarded by mu.
type userPool struct {
	mu         sync.Mutex
	prefHash   uint64
	generation uint64
	entries    []entry
	builtAt    time.Time
}

// Manager owns all per-user candidate pools.
type Manager struct {
	cfg    Config
	search Searcher
	scorer *scoring.Scorer
	logger zerolog.Logger

	// mu guards the pools map itself; individual pools have their own lock.
	mu    sync.RWMutex
	pools map[string]*userPool
}

// NewManager creates a pool manager, applying defaults for zero-valued
// config fields.
func NewManager(cfg Config, search Searcher, scorer *scoring.Scorer, logger *zerolog.Logger) (*Manager, error) {
	def := DefaultConfig()
	if cfg.TargetSize == 0 {
		cfg.TargetSize = def.TargetSize
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = def.PerPage
	}
	if cfg.MaxParallelFetches == 0 {
		cfg.MaxParallelFetches = def.MaxParallelFetches
	}
	if cfg.LowWater == 0 {
		cfg.LowWater = def.LowWater
	}
	if cfg.TTL == 0 {
		cfg.TTL = def.TTL
	}
	if cfg.QualityWeight == 0 && cfg.MatchWeight == 0 {
		cfg.QualityWeight = def.QualityWeight
		cfg.MatchWeight = def.MatchWeight
	}
	if cfg.LikeBoost == 0 {
		cfg.LikeBoost = def.LikeBoost
	}
	if cfg.SaveBoost == 0 {
		cfg.SaveBoost = def.SaveBoost
	}
	if cfg.SkipPenalty == 0 {
		cfg.SkipPenalty = def.SkipPenalty
	}
	if cfg.MaxRefineShift == 0 {
		cfg.MaxRefineShift = def.MaxRefineShift
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}
	if search == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	return &Manager{
		cfg:    cfg,
		search: search,
		scorer: scorer,
		logger: logger.With().Str("component", "pool").Logger(),
		pools:  make(map[string]*userPool),
	}, nil
}

// getOrCreate returns the pool slot for a user, creating it if absent.
func (m *Manager) getOrCreate(userID string) *userPool {
	m.mu.RLock()
	up, ok := m.pools[userID]
	m.mu.RUnlock()
	if ok {
		return up
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if up, ok = m.pools[userID]; ok {
		return up
	}
	up = &userPool{}
	m.pools[userID] = up
	return up
}

// lookup returns the pool slot for a user, or nil.
func (m *Manager) lookup(userID string) *userPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pools[userID]
}

// hashPrefs digests a preference set with FNV-1a.
func hashPrefs(prefs *models.UserPreferences) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prefs.Fingerprint()))
	return h.Sum64()
}

// BuildPool fetches, scores and installs a candidate pool for the user.
// Idempotent per preference fingerprint: when the current pool was built from
// the same preferences and has not expired, no remote fetch happens.
//
// The seen set is excluded at install time so a freshly built pool never
// contains a repository the user has already seen.
func (m *Manager) BuildPool(ctx context.Context, userID string, prefs *models.UserPreferences, seen map[int64]struct{}) error {
	up := m.getOrCreate(userID)
	hash := hashPrefs(prefs)

	up.mu.Lock()
	if up.prefHash == hash && len(up.entries) > 0 && time.Since(up.builtAt) < m.cfg.TTL {
		up.mu.Unlock()
		metrics.PoolBuilds.WithLabelValues("cache_hit").Inc()
		m.logger.Debug().Str("user_id", userID).Msg("Pool build skipped, cache hit")
		return nil
	}
	buildGen := up.generation
	up.mu.Unlock()

	repos, err := m.fetchCandidates(ctx, prefs)
	if err != nil {
		metrics.PoolBuilds.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch candidates: %w", err)
	}

	entries := m.scoreCandidates(repos, prefs, seen)

	up.mu.Lock()
	defer up.mu.Unlock()
	if up.generation != buildGen {
		// The pool was cleared or rebuilt while this fetch was in flight;
		// applying these results would resurrect a superseded generation.
		metrics.PoolBuilds.WithLabelValues("stale").Inc()
		m.logger.Debug().Str("user_id", userID).Msg("Pool build discarded, generation moved")
		return nil
	}
	up.entries = entries
	up.prefHash = hash
	up.builtAt = time.Now()
	up.generation++

	metrics.PoolBuilds.WithLabelValues("built").Inc()
	metrics.PoolBuildSize.Observe(float64(len(entries)))
	m.logger.Info().
		Str("user_id", userID).
		Int("candidates", len(entries)).
		Msg("Pool built")
	return nil
}

// fetchCandidates pulls enough pages from the search service to reach the
// target size, fetching pages in parallel with a bounded wait group.
func (m *Manager) fetchCandidates(ctx context.Context, prefs *models.UserPreferences) ([]models.Repository, error) {
	query := m.queryFromPrefs(prefs)
	pages := (m.cfg.TargetSize + m.cfg.PerPage - 1) / m.cfg.PerPage
	if pages < 1 {
		pages = 1
	}

	var (
		mu      sync.Mutex
		byPage  = make(map[int][]models.Repository, pages)
		lastErr error
	)

	swg := sizedwaitgroup.New(m.cfg.MaxParallelFetches)
	for page := 1; page <= pages; page++ {
		swg.Add()
		go func(page int) {
			defer swg.Done()
			repos, err := m.search.Search(ctx, query, page)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			byPage[page] = repos
		}(page)
	}
	swg.Wait()

	if len(byPage) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("search returned no pages")
	}

	// Deterministic page order regardless of fetch completion order.
	out := make([]models.Repository, 0, m.cfg.TargetSize)
	for page := 1; page <= pages; page++ {
		out = append(out, byPage[page]...)
	}
	return out, nil
}

// queryFromPrefs builds the search query for a preference set.
func (m *Manager) queryFromPrefs(prefs *models.UserPreferences) models.SearchQuery {
	q := models.SearchQuery{
		Languages: prefs.Languages,
		PerPage:   m.cfg.PerPage,
	}
	// Frameworks and domains become topic filters; goals stay free text.
	for _, fw := range prefs.Frameworks {
		if fw = strings.TrimSpace(fw); fw != "" {
			q.Topics = append(q.Topics, strings.ToLower(fw))
		}
	}
	for _, d := range prefs.Domains {
		if d = strings.TrimSpace(d); d != "" {
			q.Topics = append(q.Topics, strings.ToLower(d))
		}
	}
	q.Keywords = append(q.Keywords, prefs.Goals...)
	return q
}

// scoreCandidates ranks fetched repositories by fit: a blend of snapshot
// quality and preference overlap. Seen repositories and duplicates are
// dropped here so the installed pool starts clean.
func (m *Manager) scoreCandidates(repos []models.Repository, prefs *models.UserPreferences, seen map[int64]struct{}) []entry {
	interests := prefs.Interests()
	total := m.cfg.QualityWeight + m.cfg.MatchWeight

	entries := make([]entry, 0, len(repos))
	used := make(map[int64]struct{}, len(repos))
	for _, repo := range repos {
		if _, dup := used[repo.ID]; dup {
			continue
		}
		if _, wasSeen := seen[repo.ID]; wasSeen {
			continue
		}
		used[repo.ID] = struct{}{}

		quality := m.scorer.QuickScore(&repo)
		match := matchScore(&repo, interests)
		fit := (m.cfg.QualityWeight*quality + m.cfg.MatchWeight*match) / total
		entries = append(entries, entry{repo: repo, fit: fit})
	}

	sortEntries(entries)
	return entries
}

// matchScore measures overlap between a repository's language/topics and the
// user's interests, scaled to [0,100].
func matchScore(repo *models.Repository, interests []string) float64 {
	if len(interests) == 0 {
		return 0
	}
	matched := 0
	lang := strings.ToLower(repo.Language)
	for _, interest := range interests {
		if interest == lang || repo.HasTopic(interest) {
			matched++
		}
	}
	return 100 * float64(matched) / float64(len(interests))
}

// sortEntries orders by fit descending with stars then ID as deterministic
// tie-breaks.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].fit != entries[j].fit {
			return entries[i].fit > entries[j].fit
		}
		if entries[i].repo.Stars != entries[j].repo.Stars {
			return entries[i].repo.Stars > entries[j].repo.Stars
		}
		return entries[i].repo.ID < entries[j].repo.ID
	})
}

// RefinePoolBasedOnInteractions re-weights the user's pool from aggregated
// interaction history: candidates sharing tags with liked or saved items move
// up, candidates sharing tags with skipped items move down. Pure re-ordering
// in memory; never a remote call.
func (m *Manager) RefinePoolBasedOnInteractions(userID string, history []models.InteractionSummary) {
	if len(history) == 0 {
		return
	}
	up := m.lookup(userID)
	if up == nil {
		return
	}

	byTag := make(map[string]models.InteractionSummary, len(history))
	for _, s := range history {
		byTag[strings.ToLower(s.Tag)] = s
	}

	up.mu.Lock()
	defer up.mu.Unlock()

	for i := range up.entries {
		repo := &up.entries[i].repo
		var delta float64
		consider := func(tag string) {
			if s, ok := byTag[tag]; ok {
				delta += m.cfg.LikeBoost*float64(s.Likes) +
					m.cfg.SaveBoost*float64(s.Saves) -
					m.cfg.SkipPenalty*float64(s.Skips)
			}
		}
		consider(strings.ToLower(repo.Language))
		for _, topic := range repo.Topics {
			consider(strings.ToLower(topic))
		}

		if delta > m.cfg.MaxRefineShift {
			delta = m.cfg.MaxRefineShift
		} else if delta < -m.cfg.MaxRefineShift {
			delta = -m.cfg.MaxRefineShift
		}
		up.entries[i].fit += delta
	}
	sortEntries(up.entries)

	metrics.PoolRefinements.Inc()
	m.logger.Debug().
		Str("user_id", userID).
		Int("tags", len(byTag)).
		Msg("Pool refined from interactions")
}

// GetRecommendations draws up to count entries not present in the exclusion
// set, removing drawn entries from the pool so a repeated call never repeats
// a result within the same pool generation. A pool built from different
// preferences than the ones supplied is treated as absent.
func (m *Manager) GetRecommendations(userID string, prefs *models.UserPreferences, count int, exclude map[int64]struct{}) []models.Repository {
	if count <= 0 {
		return nil
	}
	up := m.lookup(userID)
	if up == nil {
		return nil
	}

	up.mu.Lock()
	defer up.mu.Unlock()

	if up.prefHash != hashPrefs(prefs) || len(up.entries) == 0 {
		return nil
	}

	result := make([]models.Repository, 0, count)
	remaining := make([]entry, 0, len(up.entries))
	for _, e := range up.entries {
		if len(result) < count {
			if _, skip := exclude[e.repo.ID]; !skip {
				result = append(result, e.repo)
				continue
			}
		}
		remaining = append(remaining, e)
	}
	up.entries = remaining

	metrics.PoolDraws.Add(float64(len(result)))
	return result
}

// ClearPool drops the user's cached pool; the next build refetches. The
// generation bump invalidates any fill still in flight.
func (m *Manager) ClearPool(userID string) {
	up := m.lookup(userID)
	if up == nil {
		return
	}
	up.mu.Lock()
	up.entries = nil
	up.prefHash = 0
	up.generation++
	up.mu.Unlock()

	m.logger.Info().Str("user_id", userID).Msg("Pool cleared")
}

// Size reports how many candidates remain in the user's pool.
func (m *Manager) Size(userID string) int {
	up := m.lookup(userID)
	if up == nil {
		return 0
	}
	up.mu.Lock()
	defer up.mu.Unlock()
	return len(up.entries)
}

// NeedsRefill reports whether the pool is below the low-water mark.
func (m *Manager) NeedsRefill(userID string) bool {
	return m.Size(userID) < m.cfg.LowWater
}

// ExpireStale drops pools older than the TTL. Called by the janitor service;
// returns how many pools were dropped.
func (m *Manager) ExpireStale() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for userID, up := range m.pools {
		up.mu.Lock()
		stale := !up.builtAt.IsZero() && time.Since(up.builtAt) >= m.cfg.TTL
		empty := len(up.entries) == 0 && up.builtAt.IsZero()
		up.mu.Unlock()
		if stale || empty {
			delete(m.pools, userID)
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Info().Int("dropped", dropped).Msg("Stale pools expired")
	}
	return dropped
}

// ActivePools reports how many user pools are currently held.
func (m *Manager) ActivePools() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pools)
}
