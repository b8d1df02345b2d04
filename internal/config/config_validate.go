// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum accepted JWT secret length in bytes.
// HS256 keys shorter than the hash output weaken the MAC.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.GitHub.Validate(); err != nil {
		return fmt.Errorf("github: %w", err)
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateBadger(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateIngest(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateRecommendStack()
}

// validateRecommendStack delegates to the owning packages' validators.
func (c *Config) validateRecommendStack() error {
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if err := c.Cluster.Validate(); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch strings.ToLower(c.Server.Environment) {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

func (c *Config) validateLogLevel() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func (c *Config) validateLogFormat() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateBadger() error {
	if !c.Badger.InMemory && c.Badger.Dir == "" {
		return fmt.Errorf("BADGER_DIR is required unless BADGER_IN_MEMORY=true")
	}
	if c.Badger.GCInterval <= 0 {
		return fmt.Errorf("BADGER_GC_INTERVAL must be positive, got %s", c.Badger.GCInterval)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" && !c.NATS.EmbeddedServer {
		return fmt.Errorf("NATS_URL is required when NATS is enabled without an embedded server")
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.Port < 1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", c.NATS.Port)
		}
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
		}
	}
	return c.validateNATSRouter()
}

func (c *Config) validateNATSRouter() error {
	if c.NATS.RouterRetryCount < 0 {
		return fmt.Errorf("NATS_ROUTER_RETRY_COUNT must be non-negative, got %d", c.NATS.RouterRetryCount)
	}
	if c.NATS.RouterRetryInitialInterval < 0 {
		return fmt.Errorf("NATS_ROUTER_RETRY_INTERVAL must be non-negative, got %s", c.NATS.RouterRetryInitialInterval)
	}
	if c.NATS.RouterPoisonQueueEnabled && c.NATS.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("NATS_ROUTER_POISON_TOPIC is required when the poison queue is enabled")
	}
	if c.NATS.RouterCloseTimeout <= 0 {
		return fmt.Errorf("NATS_ROUTER_CLOSE_TIMEOUT must be positive, got %s", c.NATS.RouterCloseTimeout)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be positive, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.FlushInterval <= 0 {
		return fmt.Errorf("INGEST_FLUSH_INTERVAL must be positive, got %s", c.Ingest.FlushInterval)
	}
	if c.Ingest.Subscribers <= 0 {
		return fmt.Errorf("INGEST_SUBSCRIBERS must be positive, got %d", c.Ingest.Subscribers)
	}
	if c.Ingest.DurableName == "" {
		return fmt.Errorf("INGEST_DURABLE_NAME must not be empty")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at least API_DEFAULT_PAGE_SIZE, got %d < %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.Security.Casbin.DefaultRole == "" {
		return fmt.Errorf("CASBIN_DEFAULT_ROLE must not be empty")
	}
	if c.Security.Casbin.CacheEnabled && c.Security.Casbin.CacheTTL <= 0 {
		return fmt.Errorf("CASBIN_CACHE_TTL must be positive when caching is enabled, got %s", c.Security.Casbin.CacheTTL)
	}
	return nil
}

func (c *Config) validateAuthMode() error {
	switch c.Security.AuthMode {
	case "none":
		// An open admin surface on a public deployment is never intentional.
		if c.Server.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
		return nil
	case "jwt":
		return c.validateJWTAuth()
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}
}

func (c *Config) validateJWTAuth() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters, got %d", minJWTSecretLength, len(c.Security.JWTSecret))
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %s", c.Security.SessionTimeout)
	}
	return c.validateAdminCredentials()
}

func (c *Config) validateAdminCredentials() error {
	// Both-or-neither: a username without a password (or vice versa)
	// indicates a partially configured deployment.
	if (c.Security.AdminUsername == "") != (c.Security.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if c.Security.AdminPassword != "" && len(c.Security.AdminPassword) < 12 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 12 characters")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Security.RateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports whether the CORS configuration deserves a
// startup warning: wildcard origins in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.Server.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
