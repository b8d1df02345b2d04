// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package cluster implements the technology-domain cluster index.
//
// A cluster is a named technology domain ("web-frontend", "data-science", …)
// holding a capped, score-ordered shortlist of repositories. Shortlists are
// rebuilt periodically out of band by the cluster refresh service; from the
// recommendation core's perspective the index is read-only. Cluster detection
// maps a preference set to its single best-matching cluster by keyword
// overlap, with ties broken by the declared definition order.
package cluster

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/models"
)

// ID names a technology cluster.
type ID string

// Definition declares one cluster: its identifier, the keywords that match
// user interests to it, and the search query its shortlist is built from.
// Definition order is the priority order used to break detection ties.
type Definition struct {
	ID       string   `koanf:"id" json:"id"`
	Keywords []string `koanf:"keywords" json:"keywords"`
	Query    string   `koanf:"query" json:"query"`
}

// Config holds cluster index configuration.
type Config struct {
	// Definitions lists the clusters in priority order (earlier wins ties).
	Definitions []Definition `koanf:"definitions" json:"definitions"`

	// ShortlistSize caps each cluster's shortlist. Default: 50
	ShortlistSize int `koanf:"shortlist_size" json:"shortlist_size"`

	// RefreshInterval is how often the refresh service rebuilds shortlists.
	// Default: 6h
	RefreshInterval time.Duration `koanf:"refresh_interval" json:"refresh_interval"`
}

// DefaultDefinitions returns the built-in cluster set, in priority order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:       "web-frontend",
			Keywords: []string{"javascript", "typescript", "react", "vue", "svelte", "angular", "css", "frontend", "ui", "web"},
			Query:    "topic:frontend stars:>100",
		},
		{
			ID:       "web-backend",
			Keywords: []string{"go", "rust", "java", "python", "node", "api", "backend", "graphql", "rest", "microservices"},
			Query:    "topic:backend stars:>100",
		},
		{
			ID:       "data-science",
			Keywords: []string{"python", "pandas", "numpy", "data", "analytics", "visualization", "jupyter", "statistics"},
			Query:    "topic:data-science stars:>100",
		},
		{
			ID:       "machine-learning",
			Keywords: []string{"ml", "ai", "pytorch", "tensorflow", "llm", "deep-learning", "machine-learning", "neural"},
			Query:    "topic:machine-learning stars:>100",
		},
		{
			ID:       "mobile",
			Keywords: []string{"ios", "android", "swift", "kotlin", "flutter", "react-native", "mobile"},
			Query:    "topic:mobile stars:>100",
		},
		{
			ID:       "devops",
			Keywords: []string{"docker", "kubernetes", "terraform", "ci", "cd", "infrastructure", "devops", "cloud", "aws"},
			Query:    "topic:devops stars:>100",
		},
		{
			ID:       "cli-tools",
			Keywords: []string{"cli", "terminal", "shell", "tui", "command-line", "productivity"},
			Query:    "topic:cli stars:>100",
		},
		{
			ID:       "systems",
			Keywords: []string{"c", "c++", "rust", "zig", "embedded", "kernel", "compiler", "database", "systems"},
			Query:    "topic:systems-programming stars:>100",
		},
		{
			ID:       "security",
			Keywords: []string{"security", "cryptography", "pentest", "vulnerability", "infosec"},
			Query:    "topic:security stars:>100",
		},
		{
			ID:       "game-dev",
			Keywords: []string{"game", "gamedev", "engine", "graphics", "unity", "godot"},
			Query:    "topic:game-development stars:>100",
		},
	}
}

// DefaultConfig returns the default cluster configuration.
func DefaultConfig() Config {
	return Config{
		Definitions:     DefaultDefinitions(),
		ShortlistSize:   50,
		RefreshInterval: 6 * time.Hour,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if len(c.Definitions) == 0 {
		return fmt.Errorf("at least one cluster definition is required")
	}
	seen := make(map[string]struct{}, len(c.Definitions))
	for i, def := range c.Definitions {
		if def.ID == "" {
			return fmt.Errorf("cluster definition %d has an empty id", i)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("duplicate cluster id %q", def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	if c.ShortlistSize <= 0 {
		return fmt.Errorf("shortlist_size must be positive, got %d", c.ShortlistSize)
	}
	return nil
}

// Entry is one shortlist member: a repository snapshot with the health score
// it was ranked by.
type Entry struct {
	Repo  models.Repository `json:"repo"`
	Score float64           `json:"score"`
}

// Index maps technology clusters to ranked repository shortlists.
//
// Reads and shortlist replacement may run concurrently; replacement swaps a
// freshly built slice under the write lock, so readers never observe a
// partially updated shortlist.
type Index struct {
	cfg    Config
	logger zerolog.Logger

	mu         sync.RWMutex
	shortlists map[ID][]Entry
	rebuiltAt  map[ID]time.Time
}

// New creates a cluster index, applying defaults for zero-valued config
// fields. Shortlists start empty until the first refresh populates them.
func New(cfg Config, logger *zerolog.Logger) (*Index, error) {
	def := DefaultConfig()
	if len(cfg.Definitions) == 0 {
		cfg.Definitions = def.Definitions
	}
	if cfg.ShortlistSize == 0 {
		cfg.ShortlistSize = def.ShortlistSize
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cluster config: %w", err)
	}

	return &Index{
		cfg:        cfg,
		logger:     logger.With().Str("component", "cluster").Logger(),
		shortlists: make(map[ID][]Entry),
		rebuiltAt:  make(map[ID]time.Time),
	}, nil
}

// Definitions returns the configured cluster definitions in priority order.
func (ix *Index) Definitions() []Definition {
	return ix.cfg.Definitions
}

// DetectPrimaryCluster deterministically maps a preference set to the single
// best-matching cluster by keyword overlap with the user's interests. Ties
// (including zero overlap everywhere) resolve to the earliest definition.
func (ix *Index) DetectPrimaryCluster(prefs *models.UserPreferences) ID {
	interests := make(map[string]struct{})
	for _, v := range prefs.Interests() {
		interests[v] = struct{}{}
	}
	for _, g := range prefs.Goals {
		interests[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}

	best := ix.cfg.Definitions[0].ID
	bestOverlap := -1
	for _, def := range ix.cfg.Definitions {
		overlap := 0
		for _, kw := range def.Keywords {
			if _, ok := interests[strings.ToLower(kw)]; ok {
				overlap++
			}
		}
		// Strictly greater keeps the earliest definition on ties.
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = def.ID
		}
	}
	return ID(best)
}

// GetBestOfCluster returns up to count repositories from the cluster's
// shortlist in precomputed rank order, excluding the given identifiers.
// Fewer than count available is a normal outcome, not an error.
func (ix *Index) GetBestOfCluster(cluster ID, count int, exclude map[int64]struct{}, userID string) []models.Repository {
	if count <= 0 {
		return nil
	}

	ix.mu.RLock()
	shortlist := ix.shortlists[cluster]
	ix.mu.RUnlock()

	result := make([]models.Repository, 0, count)
	for _, entry := range shortlist {
		if _, skip := exclude[entry.Repo.ID]; skip {
			continue
		}
		result = append(result, entry.Repo)
		if len(result) >= count {
			break
		}
	}

	ix.logger.Debug().
		Str("cluster", string(cluster)).
		Str("user_id", userID).
		Int("requested", count).
		Int("returned", len(result)).
		Msg("Cluster shortlist drawn")

	return result
}

// ReplaceShortlist installs a freshly built shortlist for a cluster. Entries
// are deduplicated by repository ID, ordered by score (descending, ties by
// stars then ID for determinism) and capped at the configured size.
func (ix *Index) ReplaceShortlist(cluster ID, entries []Entry) {
	deduped := make([]Entry, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Repo.ID]; dup {
			continue
		}
		seen[e.Repo.ID] = struct{}{}
		deduped = append(deduped, e)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Score != deduped[j].Score {
			return deduped[i].Score > deduped[j].Score
		}
		if deduped[i].Repo.Stars != deduped[j].Repo.Stars {
			return deduped[i].Repo.Stars > deduped[j].Repo.Stars
		}
		return deduped[i].Repo.ID < deduped[j].Repo.ID
	})

	if len(deduped) > ix.cfg.ShortlistSize {
		deduped = deduped[:ix.cfg.ShortlistSize]
	}

	ix.mu.Lock()
	ix.shortlists[cluster] = deduped
	ix.rebuiltAt[cluster] = time.Now()
	ix.mu.Unlock()

	ix.logger.Info().
		Str("cluster", string(cluster)).
		Int("size", len(deduped)).
		Msg("Cluster shortlist replaced")
}

// Status reports per-cluster shortlist sizes and last rebuild times.
func (ix *Index) Status() map[string]ClusterStatus {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[string]ClusterStatus, len(ix.cfg.Definitions))
	for _, def := range ix.cfg.Definitions {
		id := ID(def.ID)
		out[def.ID] = ClusterStatus{
			Size:      len(ix.shortlists[id]),
			RebuiltAt: ix.rebuiltAt[id],
		}
	}
	return out
}

// ClusterStatus describes one cluster's shortlist state.
type ClusterStatus struct {
	Size      int       `json:"size"`
	RebuiltAt time.Time `json:"rebuilt_at"`
}
