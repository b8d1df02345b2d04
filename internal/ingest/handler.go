// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
)

// PoolRefiner re-weights a user's candidate pool from aggregated
// interaction history. *pool.Manager implements it.
type PoolRefiner interface {
	RefinePoolBasedOnInteractions(userID string, history []models.InteractionSummary)
}

// HistorySource supplies the per-tag interaction aggregates that drive pool
// refinement. *database.DB implements it.
type HistorySource interface {
	TagSummaries(ctx context.Context, userID string) ([]models.InteractionSummary, error)
}

// refineEvery is how many non-view interactions a user accumulates between
// pool refinements. Refinement re-sorts the whole pool, so doing it on
// every swipe would be wasted work the next swipe immediately repeats.
const refineEvery = 5

// SwipeHandler consumes swipe events from the stream: deserialize,
// validate, hand to the batch appender and periodically trigger pool
// refinement for the swiping user.
type SwipeHandler struct {
	appender *Appender
	refiner  PoolRefiner
	history  HistorySource

	mu         sync.Mutex
	swipeCount map[string]int
}

// NewSwipeHandler creates a handler. refiner and history may be nil, in
// which case refinement is skipped.
func NewSwipeHandler(appender *Appender, refiner PoolRefiner, history HistorySource) (*SwipeHandler, error) {
	if appender == nil {
		return nil, fmt.Errorf("appender required")
	}
	return &SwipeHandler{
		appender:   appender,
		refiner:    refiner,
		history:    history,
		swipeCount: make(map[string]int),
	}, nil
}

// Handle is the router consumer entrypoint. A returned error nacks the
// message into retry and eventually the poison queue; malformed payloads
// are acked and dropped since redelivery can never fix them.
func (h *SwipeHandler) Handle(msg *message.Message) error {
	metrics.RecordNATSConsume()
	start := time.Now()

	event, err := DeserializeEvent(msg.Payload)
	if err != nil {
		metrics.RecordNATSParseFailed()
		logging.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("ingest: dropping undecodable swipe event")
		return nil
	}

	event.EnsureSchemaVersion()

	if err := event.Validate(); err != nil {
		metrics.RecordNATSParseFailed()
		logging.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Str("event_id", event.EventID).
			Msg("ingest: dropping invalid swipe event")
		return nil
	}

	if err := h.appender.Append(msg.Context(), event); err != nil {
		return fmt.Errorf("append event %s: %w", event.EventID, err)
	}

	h.maybeRefine(msg.Context(), event)

	metrics.RecordNATSProcessed()
	metrics.RecordNATSProcessingDuration(time.Since(start))
	return nil
}

// maybeRefine triggers pool refinement every refineEvery non-view swipes
// for the user. Refinement errors never fail the message; the event is
// already buffered for persistence.
func (h *SwipeHandler) maybeRefine(ctx context.Context, event *SwipeEvent) {
	if h.refiner == nil || h.history == nil {
		return
	}
	if event.Action == models.ActionView {
		return
	}

	h.mu.Lock()
	h.swipeCount[event.UserID]++
	due := h.swipeCount[event.UserID]%refineEvery == 0
	h.mu.Unlock()

	if !due {
		return
	}

	// Recent events may still sit in the appender buffer; the aggregates
	// lag by at most one flush interval, which refinement tolerates.
	summaries, err := h.history.TagSummaries(ctx, event.UserID)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("user_id", event.UserID).
			Msg("ingest: tag summaries unavailable, skipping refinement")
		return
	}

	h.refiner.RefinePoolBasedOnInteractions(event.UserID, summaries)

	logging.Debug().
		Str("user_id", event.UserID).
		Int("tags", len(summaries)).
		Msg("ingest: refined candidate pool from interaction history")
}
