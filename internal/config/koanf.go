// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reposcout/internal/recommend"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
	"github.com/tomtom215/reposcout/internal/search"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reposcout/config.yaml",
	"/etc/reposcout/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Domain sections
// delegate to their owning package's DefaultConfig.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		GitHub: search.DefaultConfig(),
		Database: DatabaseConfig{
			Path:      "/data/reposcout.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Badger: BadgerConfig{
			Dir:        "/data/prefs",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:        true,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			Port:           4222,
			StoreDir:       "/data/nats/jetstream",
			MaxMemory:      1 << 28, // 256MB
			MaxStore:       4 << 30, // 4GB

			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterThrottlePerSecond:    0, // Unlimited
			RouterDeduplicationEnabled: true,
			RouterDeduplicationTTL:     5 * time.Minute,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "swipes.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		Ingest: IngestConfig{
			BatchSize:     64,
			FlushInterval: 2 * time.Second,
			Subscribers:   2,
			DurableName:   "swipe-processor",
			QueueGroup:    "processors",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			Casbin: CasbinConfig{
				DefaultRole:  "viewer",
				CacheEnabled: true,
				CacheTTL:     5 * time.Minute,
			},
		},
		Recommend: recommend.DefaultConfig(),
		Scoring:   scoring.DefaultConfig(),
		Pool:      pool.DefaultConfig(),
		Cluster:   cluster.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any setting
//
// Precedence is ENV > File > Defaults. Slice-valued settings arrive from the
// environment as comma-separated strings and are post-processed.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// GITHUB_TOKEN -> github.token, HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when supplied through the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are dropped so that random environment noise cannot
// pollute the configuration.
//
// Examples:
//   - GITHUB_TOKEN -> github.token
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_STAR_CAP -> recommend.star_cap
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// GitHub adapter mappings
		"github_token":          "github.token",
		"github_rps":            "github.requests_per_second",
		"github_burst":          "github.burst",
		"github_max_retries":    "github.max_retries",
		"github_cache_ttl":      "github.cache_ttl",
		"github_cache_capacity": "github.cache_capacity",
		"github_per_page":       "github.per_page",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Badger mappings
		"badger_dir":         "badger.dir",
		"badger_in_memory":   "badger.in_memory",
		"badger_gc_interval": "badger.gc_interval",

		// NATS mappings
		"nats_enabled":               "nats.enabled",
		"nats_url":                   "nats.url",
		"nats_embedded":              "nats.embedded_server",
		"nats_port":                  "nats.port",
		"nats_store_dir":             "nats.store_dir",
		"nats_max_memory":            "nats.max_memory",
		"nats_max_store":             "nats.max_store",
		"nats_router_retry_count":    "nats.router_retry_count",
		"nats_router_retry_interval": "nats.router_retry_initial_interval",
		"nats_router_throttle":       "nats.router_throttle_per_second",
		"nats_router_dedup_enabled":  "nats.router_deduplication_enabled",
		"nats_router_dedup_ttl":      "nats.router_deduplication_ttl",
		"nats_router_poison_enabled": "nats.router_poison_queue_enabled",
		"nats_router_poison_topic":   "nats.router_poison_queue_topic",
		"nats_router_close_timeout":  "nats.router_close_timeout",

		// Ingest mappings
		"ingest_batch_size":     "ingest.batch_size",
		"ingest_flush_interval": "ingest.flush_interval",
		"ingest_subscribers":    "ingest.subscribers",
		"ingest_durable_name":   "ingest.durable_name",
		"ingest_queue_group":    "ingest.queue_group",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Security mappings
		"auth_mode":           "security.auth_mode",
		"jwt_secret":          "security.jwt_secret",
		"session_timeout":     "security.session_timeout",
		"admin_username":      "security.admin_username",
		"admin_password":      "security.admin_password",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Casbin mappings
		"casbin_default_role":  "security.casbin.default_role",
		"casbin_cache_enabled": "security.casbin.cache_enabled",
		"casbin_cache_ttl":     "security.casbin.cache_ttl",

		// Orchestrator mappings
		"recommend_default_count":   "recommend.default_count",
		"recommend_max_count":       "recommend.max_count",
		"recommend_star_cap":        "recommend.star_cap",
		"recommend_tier_timeout":    "recommend.tier_timeout",
		"recommend_pool_floor":      "recommend.pool_floor",
		"recommend_cluster_floor":   "recommend.cluster_floor",
		"recommend_hybrid_floor":    "recommend.hybrid_floor",
		"recommend_hybrid_seeds":    "recommend.hybrid_seeds",
		"recommend_trending_window": "recommend.trending_window",

		// Pool mappings
		"pool_target_size": "pool.target_size",
		"pool_per_page":    "pool.per_page",
		"pool_low_water":   "pool.low_water",
		"pool_ttl":         "pool.ttl",

		// Cluster mappings
		"cluster_shortlist_size":   "cluster.shortlist_size",
		"cluster_refresh_interval": "cluster.refresh_interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage, such as
// testing with mock configurations or custom sources.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when swapping configuration
// during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
