// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package recommend

import (
	"fmt"
	"time"
)

// Config holds orchestrator tuning. The scorer, cluster index and pool carry
// their own configurations; this covers only the cascade itself.
type Config struct {
	// DefaultCount is served when the caller does not specify one. Default: 10
	DefaultCount int `koanf:"default_count" json:"default_count"`

	// MaxCount bounds a single request. Default: 50
	MaxCount int `koanf:"max_count" json:"max_count"`

	// StarCap excludes repositories above this star count from every tier
	// unless the user prefers high popularity. It exists to surface
	// lesser-known repositories by default. Default: 30000
	StarCap int `koanf:"star_cap" json:"star_cap"`

	// TierTimeout bounds each remote call made by a tier. A timed-out tier
	// is skipped, never fatal. Default: 8s
	TierTimeout time.Duration `koanf:"tier_timeout" json:"tier_timeout"`

	// Tier floors: once the accumulated result reaches a tier's floor the
	// cascade stops early, preferring fewer high-quality results over
	// padding from more generic tiers. Defaults: 10 / 5 / 3
	PoolFloor    int `koanf:"pool_floor" json:"pool_floor"`
	ClusterFloor int `koanf:"cluster_floor" json:"cluster_floor"`
	HybridFloor  int `koanf:"hybrid_floor" json:"hybrid_floor"`

	// HybridSeeds caps how many saved/liked repositories seed the hybrid
	// tier. Default: 10
	HybridSeeds int `koanf:"hybrid_seeds" json:"hybrid_seeds"`

	// TrendingWindow is the creation-recency window for the trending tier.
	// Default: 168h (7 days)
	TrendingWindow time.Duration `koanf:"trending_window" json:"trending_window"`
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		DefaultCount:   10,
		MaxCount:       50,
		StarCap:        30000,
		TierTimeout:    8 * time.Second,
		PoolFloor:      10,
		ClusterFloor:   5,
		HybridFloor:    3,
		HybridSeeds:    10,
		TrendingWindow: 7 * 24 * time.Hour,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DefaultCount <= 0 {
		return fmt.Errorf("default_count must be positive, got %d", c.DefaultCount)
	}
	if c.MaxCount < c.DefaultCount {
		return fmt.Errorf("max_count must be at least default_count, got %d < %d", c.MaxCount, c.DefaultCount)
	}
	if c.StarCap <= 0 {
		return fmt.Errorf("star_cap must be positive, got %d", c.StarCap)
	}
	if c.TierTimeout <= 0 {
		return fmt.Errorf("tier_timeout must be positive, got %s", c.TierTimeout)
	}
	if c.PoolFloor < 0 || c.ClusterFloor < 0 || c.HybridFloor < 0 {
		return fmt.Errorf("tier floors must be non-negative")
	}
	if c.HybridSeeds <= 0 {
		return fmt.Errorf("hybrid_seeds must be positive, got %d", c.HybridSeeds)
	}
	if c.TrendingWindow <= 0 {
		return fmt.Errorf("trending_window must be positive, got %s", c.TrendingWindow)
	}
	return nil
}
