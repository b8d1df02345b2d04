// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/preferences"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/compare"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
	"github.com/tomtom215/reposcout/internal/search"
)

// --- Mocks ---

type mockSearch struct {
	mu            sync.Mutex
	searchPages   map[int][]models.Repository
	searchErr     error
	searchDelay   time.Duration
	trendingRepos []models.Repository
	trendingErr   error
	repos         map[int64]models.Repository
	getErr        error
	signals       map[int64]*models.AuxSignals
	signalsErr    error
	searchCalls   int
	trendingCalls int
}

var _ SearchService = (*mockSearch)(nil)

func newMockSearch() *mockSearch {
	return &mockSearch{
		searchPages: make(map[int][]models.Repository),
		repos:       make(map[int64]models.Repository),
		signals:     make(map[int64]*models.AuxSignals),
	}
}

func (m *mockSearch) Search(ctx context.Context, _ models.SearchQuery, page int) ([]models.Repository, error) {
	m.mu.Lock()
	m.searchCalls++
	delay := m.searchDelay
	err := m.searchErr
	repos := m.searchPages[page]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return repos, nil
}

func (m *mockSearch) Trending(_ context.Context, _ models.TrendingQuery) ([]models.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trendingCalls++
	if m.trendingErr != nil {
		return nil, m.trendingErr
	}
	return m.trendingRepos, nil
}

func (m *mockSearch) GetRepository(_ context.Context, id int64) (*models.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	repo, ok := m.repos[id]
	if !ok {
		return nil, fmt.Errorf("repository %d: %w", id, search.ErrNotFound)
	}
	return &repo, nil
}

func (m *mockSearch) Signals(_ context.Context, repo *models.Repository) (*models.AuxSignals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signalsErr != nil {
		return nil, m.signalsErr
	}
	if s, ok := m.signals[repo.ID]; ok {
		return s, nil
	}
	return &models.AuxSignals{}, nil
}

func (m *mockSearch) searchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

func (m *mockSearch) trendingCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trendingCalls
}

type mockPrefStore struct {
	mu   sync.Mutex
	data map[string]models.UserPreferences
	err  error
}

var _ PreferenceStore = (*mockPrefStore)(nil)

func (m *mockPrefStore) Get(_ context.Context, userID string) (models.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.UserPreferences{}, m.err
	}
	prefs, ok := m.data[userID]
	if !ok {
		return models.UserPreferences{}, preferences.ErrNotFound
	}
	return prefs, nil
}

type mockInteractions struct {
	mu        sync.Mutex
	seen      map[int64]struct{}
	saved     []models.Repository
	liked     []models.Repository
	summaries []models.InteractionSummary
	err       error
}

var _ InteractionStore = (*mockInteractions)(nil)

func (m *mockInteractions) SeenIDs(_ context.Context, _ string) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.seen, nil
}

func (m *mockInteractions) SavedRepos(_ context.Context, _ string) ([]models.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.saved, nil
}

func (m *mockInteractions) LikedRepos(_ context.Context, _ string) ([]models.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.liked, nil
}

func (m *mockInteractions) TagSummaries(_ context.Context, _ string) ([]models.InteractionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

type mockHybrid struct {
	mu      sync.Mutex
	related []models.Repository
	err     error
	calls   int
	seeds   []models.Repository
}

var _ HybridSource = (*mockHybrid)(nil)

func (m *mockHybrid) Related(_ context.Context, seeds []models.Repository, _ int) ([]models.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.seeds = seeds
	if m.err != nil {
		return nil, m.err
	}
	return m.related, nil
}

func (m *mockHybrid) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Harness ---

type harness struct {
	engine   *Engine
	search   *mockSearch
	prefs    *mockPrefStore
	store    *mockInteractions
	hybrid   *mockHybrid
	clusters *cluster.Index
	pool     *pool.Manager
}

func testConfig() Config {
	return Config{
		DefaultCount:   5,
		MaxCount:       8,
		StarCap:        30000,
		TierTimeout:    2 * time.Second,
		PoolFloor:      10,
		ClusterFloor:   5,
		HybridFloor:    3,
		HybridSeeds:    4,
		TrendingWindow: 7 * 24 * time.Hour,
	}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	logger := zerolog.Nop()

	ms := newMockSearch()
	prefStore := &mockPrefStore{data: make(map[string]models.UserPreferences)}
	interactions := &mockInteractions{}

	scorer, err := scoring.NewScorer(scoring.Config{})
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	clusters, err := cluster.New(cluster.Config{}, &logger)
	if err != nil {
		t.Fatalf("cluster.New() error = %v", err)
	}
	poolMgr, err := pool.NewManager(pool.Config{TargetSize: 6, PerPage: 6, LowWater: 1}, ms, scorer, &logger)
	if err != nil {
		t.Fatalf("pool.NewManager() error = %v", err)
	}
	comparer, err := compare.NewEngine(scorer, &logger)
	if err != nil {
		t.Fatalf("compare.NewEngine() error = %v", err)
	}

	engine, err := NewEngine(cfg, Dependencies{
		Search:       ms,
		Preferences:  prefStore,
		Interactions: interactions,
		Scorer:       scorer,
		Clusters:     clusters,
		Pool:         poolMgr,
		Comparer:     comparer,
	}, &logger)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	return &harness{
		engine:   engine,
		search:   ms,
		prefs:    prefStore,
		store:    interactions,
		hybrid:   &mockHybrid{},
		clusters: clusters,
		pool:     poolMgr,
	}
}

// testRepo builds a snapshot whose creation and push dates sit past the
// maturity and staleness horizons, so identical fixtures score identically
// regardless of when they are scored.
func testRepo(id int64, stars int, lang string, topics ...string) models.Repository {
	return models.Repository{
		ID:         id,
		FullName:   fmt.Sprintf("owner/repo-%d", id),
		Stars:      stars,
		Forks:      stars / 10,
		Language:   lang,
		Topics:     topics,
		CreatedAt:  time.Now().AddDate(-6, 0, 0),
		PushedAt:   time.Now().AddDate(0, 0, -3),
		HasReadme:  true,
		OwnerLogin: "owner",
	}
}

func goPrefs() models.UserPreferences {
	prefs := models.DefaultPreferences()
	prefs.Languages = []string{"go"}
	return prefs
}

func itemIDs(items []Item) map[int64]Tier {
	out := make(map[int64]Tier, len(items))
	for _, item := range items {
		out[item.Repository.ID] = item.Tier
	}
	return out
}

// --- GetRecommendations ---

func TestEngine_ServesFromPool(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"), testRepo(3, 300, "go"),
		testRepo(4, 400, "go"), testRepo(5, 500, "go"), testRepo(6, 600, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(set.Items))
	}
	for _, item := range set.Items {
		if item.Tier != TierPool {
			t.Errorf("repo %d tier = %s, want %s", item.Repository.ID, item.Tier, TierPool)
		}
		if item.Score <= 0 {
			t.Errorf("repo %d score = %f, want > 0", item.Repository.ID, item.Score)
		}
	}
	if set.Degraded {
		t.Error("Degraded = true, want false")
	}
	if calls := h.search.trendingCallCount(); calls != 0 {
		t.Errorf("trending calls = %d, want 0", calls)
	}
}

func TestEngine_FallsBackToCluster(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	// Search succeeds but returns nothing, so the pool is empty.
	h.prefs.data["u1"] = goPrefs()
	h.clusters.ReplaceShortlist(cluster.ID("web-backend"), []cluster.Entry{
		{Repo: testRepo(11, 900, "go"), Score: 90},
		{Repo: testRepo(12, 800, "go"), Score: 80},
		{Repo: testRepo(13, 700, "go"), Score: 70},
	})

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(set.Items))
	}
	for _, item := range set.Items {
		if item.Tier != TierCluster {
			t.Errorf("repo %d tier = %s, want %s", item.Repository.ID, item.Tier, TierCluster)
		}
	}
	if set.Degraded {
		t.Error("Degraded = true, want false")
	}
}

func TestEngine_ClusterFloorStopsCascade(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.prefs.data["u1"] = goPrefs()
	h.clusters.ReplaceShortlist(cluster.ID("web-backend"), []cluster.Entry{
		{Repo: testRepo(11, 900, "go"), Score: 90},
		{Repo: testRepo(12, 800, "go"), Score: 80},
		{Repo: testRepo(13, 700, "go"), Score: 70},
		{Repo: testRepo(14, 600, "go"), Score: 60},
		{Repo: testRepo(15, 500, "go"), Score: 50},
	})
	h.search.trendingRepos = []models.Repository{testRepo(99, 100, "go")}

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 8)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	// Five cluster results meet the cluster floor, so the cascade stops
	// without touching the trending tier even though the count is unmet.
	if len(set.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(set.Items))
	}
	if calls := h.search.trendingCallCount(); calls != 0 {
		t.Errorf("trending calls = %d, want 0", calls)
	}
	if set.Degraded {
		t.Error("Degraded = true, want false")
	}
}

func TestEngine_PopularityCapFiltered(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100000, "go"),
		testRepo(2, 500, "go"),
	}
	h.prefs.data["u1"] = goPrefs()
	popular := goPrefs()
	popular.PopularityWeight = models.WeightHigh
	h.prefs.data["u2"] = popular

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 2)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	ids := itemIDs(set.Items)
	if _, capped := ids[1]; capped {
		t.Error("repo 1 (100000 stars) served despite popularity cap")
	}
	if _, ok := ids[2]; !ok {
		t.Error("repo 2 (500 stars) missing from results")
	}

	// A user who explicitly wants popular repositories bypasses the cap.
	set, err = h.engine.GetRecommendations(t.Context(), "u2", 2)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	ids = itemIDs(set.Items)
	if _, ok := ids[1]; !ok {
		t.Error("repo 1 missing for high-popularity user")
	}
}

func TestEngine_SeenRepositoriesExcluded(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"),
		testRepo(3, 300, "go"), testRepo(4, 400, "go"),
	}
	h.prefs.data["u1"] = goPrefs()
	h.store.seen = map[int64]struct{}{1: {}, 3: {}}

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 4)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	ids := itemIDs(set.Items)
	for _, seen := range []int64{1, 3} {
		if _, ok := ids[seen]; ok {
			t.Errorf("seen repo %d was served again", seen)
		}
	}
	if len(set.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(set.Items))
	}
}

func TestEngine_NoDuplicatesAcrossTiers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 1000, "go"), testRepo(2, 2000, "go"),
	}
	h.prefs.data["u1"] = goPrefs()
	h.clusters.ReplaceShortlist(cluster.ID("web-backend"), []cluster.Entry{
		{Repo: testRepo(2, 2000, "go"), Score: 90}, // duplicate of a pool repo
		{Repo: testRepo(3, 600, "go"), Score: 80},
	})
	h.search.trendingRepos = []models.Repository{
		testRepo(3, 600, "go"), // duplicate of a cluster repo
		testRepo(4, 400, "go"),
	}

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 4)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4", len(set.Items))
	}
	ids := itemIDs(set.Items)
	if len(ids) != 4 {
		t.Fatalf("distinct ids = %d, want 4 (duplicates served)", len(ids))
	}
	if ids[1] != TierPool || ids[2] != TierPool {
		t.Errorf("repos 1,2 tiers = %s,%s, want both %s", ids[1], ids[2], TierPool)
	}
	if ids[3] != TierCluster {
		t.Errorf("repo 3 tier = %s, want %s", ids[3], TierCluster)
	}
	if ids[4] != TierTrending {
		t.Errorf("repo 4 tier = %s, want %s", ids[4], TierTrending)
	}
	if !set.Degraded {
		t.Error("Degraded = false, want true after trending contribution")
	}
}

func TestEngine_TrendingDegradesResult(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchErr = errors.New("search down")
	h.search.trendingRepos = []models.Repository{
		testRepo(7, 700, "go"), testRepo(8, 800, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(set.Items))
	}
	for _, item := range set.Items {
		if item.Tier != TierTrending {
			t.Errorf("repo %d tier = %s, want %s", item.Repository.ID, item.Tier, TierTrending)
		}
	}
	if !set.Degraded {
		t.Error("Degraded = false, want true")
	}
}

func TestEngine_AllTiersEmptyReturnsEmptySet(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchErr = errors.New("search down")
	h.search.trendingErr = errors.New("trending down")
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v, want nil for empty result", err)
	}
	if set == nil {
		t.Fatal("set = nil, want empty set")
	}
	if len(set.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(set.Items))
	}
	if set.Degraded {
		t.Error("Degraded = true, want false when trending served nothing")
	}
	if set.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
}

func TestEngine_MissingPreferencesUseDefaults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"), testRepo(3, 300, "go"),
	}
	// No stored preferences for this user at all.

	set, err := h.engine.GetRecommendations(t.Context(), "new-user", 3)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(set.Items))
	}
}

func TestEngine_PreferenceStoreFailureUsesDefaults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.prefs.err = errors.New("store io failure")
	h.search.searchPages[1] = []models.Repository{testRepo(1, 100, "go")}

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 1)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 1 {
		t.Errorf("len(Items) = %d, want 1", len(set.Items))
	}
}

func TestEngine_InteractionStoreFailureDegrades(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.store.err = errors.New("db down")
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 2)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2 without exclusions", len(set.Items))
	}
}

func TestEngine_TierTimeoutSkipsSlowTier(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TierTimeout = 50 * time.Millisecond
	h := newHarness(t, cfg)
	h.search.searchDelay = 300 * time.Millisecond
	h.prefs.data["u1"] = goPrefs()
	h.clusters.ReplaceShortlist(cluster.ID("web-backend"), []cluster.Entry{
		{Repo: testRepo(5, 500, "go"), Score: 75},
	})
	h.search.trendingRepos = []models.Repository{testRepo(9, 900, "go")}

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	ids := itemIDs(set.Items)
	if ids[5] != TierCluster {
		t.Errorf("repo 5 tier = %s, want %s", ids[5], TierCluster)
	}
	if ids[9] != TierTrending {
		t.Errorf("repo 9 tier = %s, want %s", ids[9], TierTrending)
	}
}

func TestEngine_CountClamping(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	repos := make([]models.Repository, 0, 10)
	for i := int64(1); i <= 10; i++ {
		repos = append(repos, testRepo(i, int(i)*100, "go"))
	}
	h.search.searchPages[1] = repos
	h.prefs.data["u1"] = goPrefs()
	h.prefs.data["u2"] = goPrefs()

	// Zero falls back to the default count.
	set, err := h.engine.GetRecommendations(t.Context(), "u1", 0)
	if err != nil {
		t.Fatalf("GetRecommendations(0) error = %v", err)
	}
	if len(set.Items) != 5 {
		t.Errorf("len(Items) = %d, want default 5", len(set.Items))
	}

	// Oversized requests clamp to the maximum.
	set, err = h.engine.GetRecommendations(t.Context(), "u2", 99)
	if err != nil {
		t.Fatalf("GetRecommendations(99) error = %v", err)
	}
	if len(set.Items) != 8 {
		t.Errorf("len(Items) = %d, want max 8", len(set.Items))
	}
}

// --- Hybrid tier ---

func TestEngine_HybridTierServesRelated(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.engine.SetHybridSource(h.hybrid)
	h.search.searchErr = errors.New("search down")
	h.store.saved = []models.Repository{testRepo(1, 100, "go")}
	h.store.liked = []models.Repository{testRepo(2, 200, "go")}
	h.hybrid.related = []models.Repository{
		testRepo(7, 700, "go"), testRepo(8, 800, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if calls := h.hybrid.callCount(); calls != 1 {
		t.Fatalf("hybrid calls = %d, want 1", calls)
	}
	if len(h.hybrid.seeds) != 2 || h.hybrid.seeds[0].ID != 1 {
		t.Errorf("seeds = %v, want saved repo first then liked", h.hybrid.seeds)
	}
	ids := itemIDs(set.Items)
	if ids[7] != TierHybrid || ids[8] != TierHybrid {
		t.Errorf("repos 7,8 tiers = %s,%s, want both %s", ids[7], ids[8], TierHybrid)
	}
	if set.Degraded {
		t.Error("Degraded = true, want false (trending served nothing)")
	}
}

func TestEngine_HybridSkippedWithoutHistory(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.engine.SetHybridSource(h.hybrid)
	h.search.searchErr = errors.New("search down")
	h.prefs.data["u1"] = goPrefs()

	if _, err := h.engine.GetRecommendations(t.Context(), "u1", 5); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if calls := h.hybrid.callCount(); calls != 0 {
		t.Errorf("hybrid calls = %d, want 0 without saves or likes", calls)
	}
}

func TestEngine_HybridFloorStopsBeforeTrending(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.engine.SetHybridSource(h.hybrid)
	h.search.searchErr = errors.New("search down")
	h.store.saved = []models.Repository{testRepo(1, 100, "go")}
	h.hybrid.related = []models.Repository{
		testRepo(7, 700, "go"), testRepo(8, 800, "go"), testRepo(9, 900, "go"),
	}
	h.search.trendingRepos = []models.Repository{testRepo(99, 100, "go")}
	h.prefs.data["u1"] = goPrefs()

	set, err := h.engine.GetRecommendations(t.Context(), "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(set.Items))
	}
	if calls := h.search.trendingCallCount(); calls != 0 {
		t.Errorf("trending calls = %d, want 0 after hybrid floor", calls)
	}
}

// --- GetHealthReport ---

func ratePtr(v float64) *float64 { return &v }

func TestEngine_GetHealthReport(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.repos[42] = testRepo(42, 5000, "go", "cli")
	h.search.signals[42] = &models.AuxSignals{
		Contributors:    30,
		Releases:        12,
		CommitsLastYear: 250,
		IssueCloseRate:  ratePtr(0.8),
	}

	report, err := h.engine.GetHealthReport(t.Context(), 42)
	if err != nil {
		t.Fatalf("GetHealthReport() error = %v", err)
	}
	if report.Repository.ID != 42 {
		t.Errorf("Repository.ID = %d, want 42", report.Repository.ID)
	}
	if report.Partial {
		t.Error("Partial = true, want false")
	}
	if report.Signals == nil {
		t.Fatal("Signals = nil, want populated")
	}
	if report.Score.Overall <= 0 {
		t.Errorf("Score.Overall = %f, want > 0", report.Score.Overall)
	}
	if report.Score.Grade == "" {
		t.Error("Score.Grade is empty")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
}

func TestEngine_GetHealthReportPartialSignals(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.repos[42] = testRepo(42, 5000, "go")
	h.search.signalsErr = errors.New("signals unavailable")

	report, err := h.engine.GetHealthReport(t.Context(), 42)
	if err != nil {
		t.Fatalf("GetHealthReport() error = %v", err)
	}
	if !report.Partial {
		t.Error("Partial = false, want true")
	}
	if report.Signals != nil {
		t.Errorf("Signals = %v, want nil", report.Signals)
	}
	if report.Score.Overall <= 0 {
		t.Errorf("Score.Overall = %f, want > 0 from snapshot alone", report.Score.Overall)
	}
}

func TestEngine_GetHealthReportNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())

	_, err := h.engine.GetHealthReport(t.Context(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHealthReport() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_GetHealthReportUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.getErr = search.ErrUnavailable

	_, err := h.engine.GetHealthReport(t.Context(), 42)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("GetHealthReport() error = %v, want ErrRemoteUnavailable", err)
	}
}

// --- Compare ---

func TestEngine_Compare(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	strong := testRepo(1, 20000, "go", "cli")
	h.search.repos[1] = strong
	h.search.signals[1] = &models.AuxSignals{
		Contributors:    50,
		Releases:        20,
		CommitsLastYear: 400,
		IssueCloseRate:  ratePtr(0.9),
	}

	weak := testRepo(2, 10, "go")
	weak.HasReadme = false
	weak.Forks = 0
	weak.PushedAt = time.Now().AddDate(-2, 0, 0)
	h.search.repos[2] = weak

	result, err := h.engine.Compare(t.Context(), []int64{1, 2})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(result.Entries))
	}
	if result.OverallWinnerID != 1 {
		t.Errorf("OverallWinnerID = %d, want 1", result.OverallWinnerID)
	}
	if result.Verdict == "" {
		t.Error("Verdict is empty")
	}
}

func TestEngine_CompareDeduplicatesIDs(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.repos[1] = testRepo(1, 1000, "go")
	h.search.repos[2] = testRepo(2, 2000, "go")

	result, err := h.engine.Compare(t.Context(), []int64{1, 1, 2})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(result.Entries))
	}

	if _, err := h.engine.Compare(t.Context(), []int64{1, 1}); !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("Compare(1,1) error = %v, want ErrInsufficientInput", err)
	}
	if _, err := h.engine.Compare(t.Context(), []int64{1}); !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("Compare(1) error = %v, want ErrInsufficientInput", err)
	}
}

func TestEngine_CompareDropsUnresolvable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.repos[1] = testRepo(1, 1000, "go")
	h.search.repos[2] = testRepo(2, 2000, "go")

	result, err := h.engine.Compare(t.Context(), []int64{1, 999, 2})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(result.Entries))
	}
	if result.Entries[0].Repo.ID != 1 || result.Entries[1].Repo.ID != 2 {
		t.Errorf("entry order = %d,%d, want 1,2", result.Entries[0].Repo.ID, result.Entries[1].Repo.ID)
	}

	if _, err := h.engine.Compare(t.Context(), []int64{998, 999}); !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("Compare(998,999) error = %v, want ErrInsufficientInput", err)
	}
}

// --- Pool lifecycle ---

func TestEngine_RefreshPool(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"), testRepo(3, 300, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	if err := h.engine.RefreshPool(t.Context(), "u1"); err != nil {
		t.Fatalf("RefreshPool() error = %v", err)
	}
	if calls := h.search.searchCallCount(); calls != 1 {
		t.Fatalf("search calls = %d, want 1", calls)
	}

	// The freshly built pool serves without another fetch.
	set, err := h.engine.GetRecommendations(t.Context(), "u1", 3)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(set.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(set.Items))
	}
	if calls := h.search.searchCallCount(); calls != 1 {
		t.Errorf("search calls = %d, want still 1", calls)
	}

	// Refreshing again forces a refetch.
	if err := h.engine.RefreshPool(t.Context(), "u1"); err != nil {
		t.Fatalf("RefreshPool() again error = %v", err)
	}
	if calls := h.search.searchCallCount(); calls != 2 {
		t.Errorf("search calls = %d, want 2", calls)
	}
}

func TestEngine_RefreshPoolUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchErr = search.ErrUnavailable
	h.prefs.data["u1"] = goPrefs()

	err := h.engine.RefreshPool(t.Context(), "u1")
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("RefreshPool() error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestEngine_ClearPoolForcesRebuild(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testConfig())
	h.search.searchPages[1] = []models.Repository{
		testRepo(1, 100, "go"), testRepo(2, 200, "go"),
	}
	h.prefs.data["u1"] = goPrefs()

	if _, err := h.engine.GetRecommendations(t.Context(), "u1", 1); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if calls := h.search.searchCallCount(); calls != 1 {
		t.Fatalf("search calls = %d, want 1", calls)
	}

	h.engine.ClearPool("u1")

	if _, err := h.engine.GetRecommendations(t.Context(), "u1", 1); err != nil {
		t.Fatalf("GetRecommendations() after clear error = %v", err)
	}
	if calls := h.search.searchCallCount(); calls != 2 {
		t.Errorf("search calls = %d, want 2 after clear", calls)
	}
}

// --- Construction ---

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	scorer, err := scoring.NewScorer(scoring.Config{})
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	clusters, err := cluster.New(cluster.Config{}, &logger)
	if err != nil {
		t.Fatalf("cluster.New() error = %v", err)
	}
	ms := newMockSearch()
	poolMgr, err := pool.NewManager(pool.Config{TargetSize: 6, PerPage: 6, LowWater: 1}, ms, scorer, &logger)
	if err != nil {
		t.Fatalf("pool.NewManager() error = %v", err)
	}
	comparer, err := compare.NewEngine(scorer, &logger)
	if err != nil {
		t.Fatalf("compare.NewEngine() error = %v", err)
	}

	full := Dependencies{
		Search:       ms,
		Preferences:  &mockPrefStore{data: map[string]models.UserPreferences{}},
		Interactions: &mockInteractions{},
		Scorer:       scorer,
		Clusters:     clusters,
		Pool:         poolMgr,
		Comparer:     comparer,
	}

	tests := []struct {
		name    string
		mutate  func(d *Dependencies)
		cfg     Config
		wantErr bool
	}{
		{name: "complete dependencies", mutate: func(*Dependencies) {}, wantErr: false},
		{name: "missing search", mutate: func(d *Dependencies) { d.Search = nil }, wantErr: true},
		{name: "missing preferences", mutate: func(d *Dependencies) { d.Preferences = nil }, wantErr: true},
		{name: "missing interactions", mutate: func(d *Dependencies) { d.Interactions = nil }, wantErr: true},
		{name: "missing scorer", mutate: func(d *Dependencies) { d.Scorer = nil }, wantErr: true},
		{name: "missing clusters", mutate: func(d *Dependencies) { d.Clusters = nil }, wantErr: true},
		{name: "missing pool", mutate: func(d *Dependencies) { d.Pool = nil }, wantErr: true},
		{name: "missing comparer", mutate: func(d *Dependencies) { d.Comparer = nil }, wantErr: true},
		{
			name:    "max below default count",
			mutate:  func(*Dependencies) {},
			cfg:     Config{DefaultCount: 5, MaxCount: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps := full
			tt.mutate(&deps)
			_, err := NewEngine(tt.cfg, deps, &logger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
