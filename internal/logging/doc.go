// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package logging provides centralized zerolog-based structured logging for Reposcout.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with request ID propagation
//   - slog adapter for Suture v4 supervision logs
//   - Security logging for login events with sensitive data sanitization
//
// # Quick Start
//
//	import "github.com/tomtom215/reposcout/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("user_id", userID).Msg("Pool refreshed")
//	logging.Error().Err(err).Int64("repo_id", repoID).Msg("Health fetch failed")
//
//	// Context-aware logging picks up the request ID set by the API middleware
//	logging.Ctx(ctx).Info().Msg("Processing request")
//
// # Structured Logging
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Create component-specific loggers with default fields:
//
//	refreshLogger := logging.With().Str("component", "cluster-refresh").Logger()
//	refreshLogger.Info().Msg("Starting rebuild")
//
// # slog Adapter
//
// NewSlogLogger bridges zerolog to log/slog for libraries that require an
// slog.Logger, primarily sutureslog for supervisor event logging.
//
// # Security Logging
//
// SecurityLogger records login outcomes with usernames, user IDs, and error
// strings sanitized before they reach the log stream. See security.go for
// the sanitization rules.
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
package logging
