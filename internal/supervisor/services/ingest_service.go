// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package services

import (
	"context"
	"fmt"
	"time"
)

// MessageRouter matches the ingest router lifecycle: Run blocks until the
// context is canceled or the router fails, Close releases resources.
//
// Satisfied by *ingest.Router.
type MessageRouter interface {
	Run(ctx context.Context) error
	Close() error
	IsRunning() bool
}

// IngestRouterService wraps the swipe event router as a supervised
// service. A router crash is propagated to suture so the consumer is
// restarted; the durable JetStream consumer resumes where it left off.
type IngestRouterService struct {
	router MessageRouter
	name   string
}

// NewIngestRouterService creates the router service wrapper.
func NewIngestRouterService(router MessageRouter) *IngestRouterService {
	return &IngestRouterService{
		router: router,
		name:   "ingest-router",
	}
}

// Serve implements suture.Service. Run blocks for the service lifetime;
// on context cancellation the router drains in-flight handlers before
// returning.
func (s *IngestRouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ingest router failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervision logs.
func (s *IngestRouterService) String() string {
	return s.name
}

// NATSServer matches the embedded NATS server lifecycle.
//
// Satisfied by *ingest.EmbeddedServer, which is already running when
// constructed.
type NATSServer interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// EmbeddedNATSService supervises the embedded JetStream server. The
// server starts in its constructor, so this wrapper's job is to hold it
// under the tree, watch its health, and shut it down when the tree stops.
type EmbeddedNATSService struct {
	server          NATSServer
	shutdownTimeout time.Duration
	name            string
}

// NewEmbeddedNATSService creates the embedded server service wrapper.
func NewEmbeddedNATSService(server NATSServer, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "embedded-nats",
	}
}

// Serve implements suture.Service. The health poll turns a dead server
// into a service error so the supervisor surfaces it; the server itself
// cannot be restarted in process, so the error escalates to the tree.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("nats server shutdown failed: %w", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				return fmt.Errorf("embedded nats server stopped unexpectedly")
			}
		}
	}
}

// String implements fmt.Stringer for supervision logs.
func (s *EmbeddedNATSService) String() string {
	return s.name
}
