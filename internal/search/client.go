// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reposcout/internal/cache"
	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/breaker"
)

const (
	// breakerName labels the GitHub circuit in metrics and logs.
	breakerName = "github-api"

	// maxPerPage is GitHub's hard page-size ceiling.
	maxPerPage = 100

	// defaultTrendingWindow applies when a trending query has no window.
	defaultTrendingWindow = 7 * 24 * time.Hour
)

// Cache kinds, used as the cache_type metric label.
const (
	cacheKindSearch     = "search"
	cacheKindTrending   = "trending"
	cacheKindRepository = "repository"
	cacheKindSignals    = "signals"

	// cacheInstance labels the size gauge. All kinds share one LFU cache,
	// so sizing is reported for the instance rather than per kind.
	cacheInstance = "github_api"
)

// Config holds the GitHub adapter configuration.
type Config struct {
	// Token is a GitHub personal access token. Optional: without one the
	// client runs against the anonymous quota (10 search requests/minute
	// instead of 30).
	Token string `koanf:"token" json:"-"`

	// RequestsPerSecond paces outbound calls below GitHub's search quota.
	// Default: 0.45, which stays under the authenticated 30/minute limit
	// with headroom for signal sub-fetches.
	RequestsPerSecond float64 `koanf:"requests_per_second" json:"requests_per_second"`

	// Burst is the token bucket depth. Default: 3
	Burst int `koanf:"burst" json:"burst"`

	// MaxRetries bounds backoff retries per remote call, not counting the
	// initial attempt. Default: 3
	MaxRetries int `koanf:"max_retries" json:"max_retries"`

	// CacheTTL and CacheCapacity size the response cache. Defaults: 10m, 2048
	CacheTTL      time.Duration `koanf:"cache_ttl" json:"cache_ttl"`
	CacheCapacity int           `koanf:"cache_capacity" json:"cache_capacity"`

	// PerPage is the page size used when a query does not set its own.
	// Default: 30
	PerPage int `koanf:"per_page" json:"per_page"`
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 0.45,
		Burst:             3,
		MaxRetries:        3,
		CacheTTL:          10 * time.Minute,
		CacheCapacity:     2048,
		PerPage:           30,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("burst must be positive, got %d", c.Burst)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache_capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.PerPage <= 0 || c.PerPage > maxPerPage {
		return fmt.Errorf("per_page must be in (0, %d], got %d", maxPerPage, c.PerPage)
	}
	return nil
}

// Client is the GitHub-backed search adapter.
type Client struct {
	cfg     Config
	gh      *github.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker
	cache   cache.Cacher
	logger  zerolog.Logger
}

// New creates a client against the public GitHub API, authenticated when a
// token is configured.
func New(cfg Config, logger *zerolog.Logger) (*Client, error) {
	var gh *github.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		gh = github.NewClient(nil)
	}
	return NewWithClient(cfg, gh, logger)
}

// NewWithClient wires an externally constructed go-github client, applying
// defaults for zero-valued config fields. Tests use this with a mocked HTTP
// transport.
func NewWithClient(cfg Config, gh *github.Client, logger *zerolog.Logger) (*Client, error) {
	def := DefaultConfig()
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst == 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.CacheCapacity == 0 {
		cfg.CacheCapacity = def.CacheCapacity
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = def.PerPage
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	if gh == nil {
		return nil, fmt.Errorf("github client is required")
	}

	return &Client{
		cfg:     cfg,
		gh:      gh,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: breaker.New(breakerName, logger),
		cache:   cache.NewLFU(cfg.CacheCapacity, cfg.CacheTTL),
		logger:  logger.With().Str("component", "search").Logger(),
	}, nil
}

// Search fetches one page of repositories matching the query, most-starred
// first. Pages are 1-based.
func (c *Client) Search(ctx context.Context, q models.SearchQuery, page int) ([]models.Repository, error) {
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = c.cfg.PerPage
	}

	type searchKey struct {
		Query   models.SearchQuery `json:"query"`
		Page    int                `json:"page"`
		PerPage int                `json:"per_page"`
	}
	key := cache.GenerateKey("search", searchKey{Query: q, Page: page, PerPage: perPage})
	if repos, ok := c.cachedRepos(cacheKindSearch, key); ok {
		return repos, nil
	}

	rendered := buildSearchQuery(q)
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	raw, err := c.call(ctx, "search", func() (interface{}, *github.Response, error) {
		res, resp, err := c.gh.Search.Repositories(ctx, rendered, opts)
		return res, resp, err
	})
	res, err := breaker.CastResult[github.RepositoriesSearchResult](raw, err)
	if err != nil {
		return nil, err
	}

	repos := fromGitHubList(res.Repositories)
	c.logger.Debug().Str("query", rendered).Int("page", page).Int("results", len(repos)).Msg("Search page fetched")
	c.storeCache(key, repos)
	return repos, nil
}

// Trending returns repositories created within the window, ranked by stars.
// One remote query per requested language; results merge most-starred first.
// Partial language failures degrade to the languages that answered.
func (c *Client) Trending(ctx context.Context, q models.TrendingQuery) ([]models.Repository, error) {
	window := q.Window
	if window <= 0 {
		window = defaultTrendingWindow
	}
	limit := q.Limit
	if limit <= 0 {
		limit = c.cfg.PerPage
	}

	type trendingKey struct {
		Window    time.Duration `json:"window"`
		Languages []string      `json:"languages"`
		Limit     int           `json:"limit"`
	}
	key := cache.GenerateKey("trending", trendingKey{Window: window, Languages: q.Languages, Limit: limit})
	if repos, ok := c.cachedRepos(cacheKindTrending, key); ok {
		return repos, nil
	}

	since := time.Now().Add(-window)
	languages := nonEmpty(q.Languages)
	if len(languages) == 0 {
		languages = []string{""}
	}

	merged := make([]models.Repository, 0, limit)
	seen := make(map[int64]struct{}, limit)
	var lastErr error
	for _, lang := range languages {
		rendered := buildTrendingQuery(lang, since)
		opts := &github.SearchOptions{
			Sort:  "stars",
			Order: "desc",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: min(limit, maxPerPage),
			},
		}

		raw, err := c.call(ctx, "trending", func() (interface{}, *github.Response, error) {
			res, resp, err := c.gh.Search.Repositories(ctx, rendered, opts)
			return res, resp, err
		})
		res, err := breaker.CastResult[github.RepositoriesSearchResult](raw, err)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for _, repo := range fromGitHubList(res.Repositories) {
			if _, dup := seen[repo.ID]; dup {
				continue
			}
			seen[repo.ID] = struct{}{}
			merged = append(merged, repo)
		}
	}

	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Stars > merged[j].Stars })
	if len(merged) > limit {
		merged = merged[:limit]
	}

	c.storeCache(key, merged)
	return merged, nil
}

// GetRepository fetches a single repository snapshot by its stable ID.
// Unlike search snapshots, the README presence is verified here: this is the
// health-report path, where the documentation factor actually matters.
func (c *Client) GetRepository(ctx context.Context, id int64) (*models.Repository, error) {
	key := cache.GenerateKey("repository", id)
	if v, ok := c.cache.Get(key); ok {
		if repo, valid := v.(*models.Repository); valid {
			metrics.CacheHits.WithLabelValues(cacheKindRepository).Inc()
			return repo, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(cacheKindRepository).Inc()

	raw, err := c.call(ctx, "get_repository", func() (interface{}, *github.Response, error) {
		res, resp, err := c.gh.Repositories.GetByID(ctx, id)
		return res, resp, err
	})
	ghRepo, err := breaker.CastResult[github.Repository](raw, err)
	if err != nil {
		return nil, err
	}

	repo := fromGitHub(ghRepo)
	repo.HasReadme = c.probeReadme(ctx, repo.FullName, repo.HasReadme)
	c.storeCache(key, &repo)
	return &repo, nil
}

// probeReadme checks README existence. Only a definite 404 flips the
// optimistic default; transient failures keep it.
func (c *Client) probeReadme(ctx context.Context, fullName string, fallback bool) bool {
	owner, name, ok := splitFullName(fullName)
	if !ok {
		return fallback
	}

	_, err := c.call(ctx, "readme", func() (interface{}, *github.Response, error) {
		res, resp, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
		return res, resp, err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false
		}
		return fallback
	}
	return true
}

// call runs one remote operation through the rate limiter, retry policy and
// circuit breaker, recording request metrics under op.
func (c *Client) call(ctx context.Context, op string, fn func() (interface{}, *github.Response, error)) (interface{}, error) {
	start := time.Now()
	var result interface{}

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		res, err := c.breaker.Execute(func() (interface{}, error) {
			v, resp, err := fn()
			c.observeQuota(resp)
			if err != nil {
				return nil, err
			}
			return v, nil
		})
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		result = res
		return nil
	}

	notify := func(err error, next time.Duration) {
		metrics.SearchRetries.Inc()
		c.logger.Warn().Err(err).Str("operation", op).Dur("backoff", next).Msg("Retrying GitHub request")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0 // bounded by retry count and the caller's context

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries)), ctx), notify)
	mapped := c.mapError(op, err)
	metrics.RecordSearchRequest(op, resultLabel(mapped), time.Since(start))
	if mapped != nil {
		return nil, mapped
	}
	return result, nil
}

// observeQuota exports the remaining search quota from a response.
func (c *Client) observeQuota(resp *github.Response) {
	if resp != nil {
		metrics.SearchRateLimitRemaining.Set(float64(resp.Rate.Remaining))
	}
}

// cachedRepos returns a cached repository list for key, counting the lookup
// under kind.
func (c *Client) cachedRepos(kind, key string) ([]models.Repository, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		if repos, valid := v.([]models.Repository); valid {
			metrics.CacheHits.WithLabelValues(kind).Inc()
			return repos, true
		}
	}
	metrics.CacheMisses.WithLabelValues(kind).Inc()
	return nil, false
}

// storeCache stores a response and refreshes the size gauge.
func (c *Client) storeCache(key string, v interface{}) {
	c.cache.Set(key, v)
	metrics.CacheSize.WithLabelValues(cacheInstance).Set(float64(c.cache.GetStats().TotalKeys))
}

// retryable reports whether another attempt could plausibly succeed.
// Rate limits lift and 5xx/transport failures are transient; 4xx semantics,
// an open circuit and cancelled contexts are permanent.
func retryable(err error) bool {
	if breaker.Rejected(err) {
		return false
	}
	if isRateLimited(err) {
		return true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode >= http.StatusInternalServerError
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	return false
}

// isRateLimited matches both GitHub's primary quota and secondary abuse
// responses.
func isRateLimited(err error) bool {
	var rl *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	return errors.As(err, &rl) || errors.As(err, &abuse)
}

// mapError folds transport and API failures into the package sentinels so
// callers branch with errors.Is instead of inspecting go-github types.
func (c *Client) mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case isRateLimited(err):
		c.logger.Debug().Err(err).Str("operation", op).Msg("GitHub quota exhausted")
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	case breaker.Rejected(err):
		return fmt.Errorf("%s: circuit open: %w", op, ErrUnavailable)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch {
		case ghErr.Response.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case ghErr.Response.StatusCode == http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidQuery, ghErr.Message)
		case ghErr.Response.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%s: %w", op, ErrUnavailable)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	// Transport-level failure: DNS, TLS, connection reset.
	c.logger.Debug().Err(err).Str("operation", op).Msg("GitHub transport failure")
	return fmt.Errorf("%s: %w", op, ErrUnavailable)
}

// resultLabel classifies a mapped error for the request counter.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
