// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package config provides configuration management for the application.
//
// Configuration is loaded in three layers with clear precedence:
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or well-known locations)
//  3. Environment variables (highest priority)
//
// The domain packages (search, scoring, pool, cluster, recommend) each own
// their tuning structs; this package composes them into one tree and adds the
// process-level sections they do not cover: server, logging, database, badger,
// nats, ingest, api and security.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reposcout/internal/recommend"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
	"github.com/tomtom215/reposcout/internal/search"
)

// encryptedTokenPrefix marks a GitHub token stored encrypted-at-rest.
// See CredentialEncryptor for the format of the payload after the prefix.
const encryptedTokenPrefix = "enc:v1:"

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	GitHub   search.Config  `koanf:"github"`
	Database DatabaseConfig `koanf:"database"`
	Badger   BadgerConfig   `koanf:"badger"`
	NATS     NATSConfig     `koanf:"nats"`
	Ingest   IngestConfig   `koanf:"ingest"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`

	// Recommendation stack. Each section maps 1:1 onto the owning package's
	// Config and is passed through unchanged at wiring time.
	Recommend recommend.Config `koanf:"recommend"`
	Scoring   scoring.Config   `koanf:"scoring"`
	Pool      pool.Config      `koanf:"pool"`
	Cluster   cluster.Config   `koanf:"cluster"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"` // include caller file:line
}

// DatabaseConfig holds DuckDB settings for the interaction store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// BadgerConfig holds BadgerDB settings for the preference store.
type BadgerConfig struct {
	Dir        string        `koanf:"dir"`
	InMemory   bool          `koanf:"in_memory"` // for tests and ephemeral deployments
	GCInterval time.Duration `koanf:"gc_interval"`
}

// NATSConfig holds settings for the embedded NATS JetStream server and the
// Watermill router that consumes swipe events from it.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	// Router middleware settings.
	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterThrottlePerSecond    int64         `koanf:"router_throttle_per_second"` // 0 = unlimited
	RouterDeduplicationEnabled bool          `koanf:"router_deduplication_enabled"`
	RouterDeduplicationTTL     time.Duration `koanf:"router_deduplication_ttl"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// IngestConfig holds swipe ingestion pipeline settings.
type IngestConfig struct {
	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	Subscribers   int           `koanf:"subscribers"`
	DurableName   string        `koanf:"durable_name"`
	QueueGroup    string        `koanf:"queue_group"`
}

// APIConfig holds API pagination and response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // "none" or "jwt"
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	Casbin            CasbinConfig  `koanf:"casbin"`
}

// CasbinConfig holds RBAC authorization settings.
type CasbinConfig struct {
	// DefaultRole is assigned to authenticated users whose token carries no
	// role claim. Default: viewer
	DefaultRole  string        `koanf:"default_role"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// Addr returns the host:port listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// AuthEnabled reports whether request authentication is on.
func (c *Config) AuthEnabled() bool {
	return c.Security.AuthMode != "none"
}

// Load loads, decrypts and validates the configuration.
// This is the single entry point used by cmd/server.
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, err
	}
	if err := cfg.decryptCredentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decryptCredentials resolves encrypted-at-rest credentials in place.
// Only the GitHub token supports encryption; the payload is marked with the
// enc:v1: prefix and keyed off the JWT secret.
func (c *Config) decryptCredentials() error {
	if !strings.HasPrefix(c.GitHub.Token, encryptedTokenPrefix) {
		return nil
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("github token is encrypted but security.jwt_secret is not set")
	}
	enc, err := NewCredentialEncryptor(c.Security.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize credential encryptor: %w", err)
	}
	plain, err := enc.Decrypt(strings.TrimPrefix(c.GitHub.Token, encryptedTokenPrefix))
	if err != nil {
		return fmt.Errorf("failed to decrypt github token: %w", err)
	}
	c.GitHub.Token = plain
	return nil
}
