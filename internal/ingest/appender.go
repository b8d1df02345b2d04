// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/reposcout/internal/database"
	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
)

// InteractionStore is the persistence surface the appender writes to.
// *database.DB implements it; tests substitute a mock.
type InteractionStore interface {
	// AppendInteractions inserts a batch of interaction rows, skipping
	// event IDs that were already persisted. Returns the number inserted.
	AppendInteractions(ctx context.Context, rows []database.InteractionRow) (int, error)

	// UpsertRepoSnapshots refreshes the repository snapshots referenced by
	// the batch.
	UpsertRepoSnapshots(ctx context.Context, repos []models.Repository) error
}

// AppenderStats holds runtime statistics for monitoring.
type AppenderStats struct {
	EventsReceived int64
	EventsFlushed  int64
	FlushCount     int64
	ErrorCount     int64
	LastFlushTime  time.Time
	LastError      string
	BufferSize     int
	AvgFlushTime   time.Duration
}

// Appender buffers swipe events and writes them to the store in batches,
// either when the batch size is reached or the flush interval elapses.
//
// Flush operations are serialized via flushMu so timer-based and
// batch-triggered flushes cannot interleave, keeping insert ordering
// consistent.
type Appender struct {
	store  InteractionStore
	config AppenderConfig

	mu     sync.Mutex
	buffer []*SwipeEvent

	flushMu sync.Mutex

	closed   atomic.Bool
	started  atomic.Bool
	stopChan chan struct{}
	doneChan chan struct{}
	flushWg  sync.WaitGroup

	eventsReceived atomic.Int64
	eventsFlushed  atomic.Int64
	flushCount     atomic.Int64
	errorCount     atomic.Int64
	lastFlushTime  atomic.Value // time.Time
	lastError      atomic.Value // string
	totalFlushTime atomic.Int64 // nanoseconds
}

// NewAppender creates an appender over the given store.
func NewAppender(store InteractionStore, cfg AppenderConfig) (*Appender, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive")
	}

	a := &Appender{
		store:    store,
		config:   cfg,
		buffer:   make([]*SwipeEvent, 0, cfg.BatchSize),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	a.lastFlushTime.Store(time.Time{})
	a.lastError.Store("")

	return a, nil
}

// Start begins the periodic flush timer. Idempotent.
func (a *Appender) Start(ctx context.Context) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}
	if a.started.Swap(true) {
		return nil
	}

	go a.flushLoop(ctx)
	return nil
}

// Append adds an event to the buffer. If the buffer reaches batch size an
// async flush is triggered.
func (a *Appender) Append(ctx context.Context, event *SwipeEvent) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, event)
	bufferSize := len(a.buffer)
	a.eventsReceived.Add(1)
	needsFlush := bufferSize >= a.config.BatchSize
	a.mu.Unlock()

	if needsFlush {
		a.flushWg.Add(1)
		go func() {
			defer a.flushWg.Done()
			// The caller's context is the Watermill message context and
			// may be canceled as soon as the handler returns; the flush
			// must still complete to persist data. Use a detached context
			// with its own timeout.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.doFlush(flushCtx)
		}()
	}

	return nil
}

// Flush synchronously flushes all buffered events, waiting for any
// in-flight async flushes first.
func (a *Appender) Flush(ctx context.Context) error {
	a.flushWg.Wait()
	return a.doFlushSync(ctx)
}

// Close stops the appender and flushes pending events. Idempotent.
func (a *Appender) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	if a.started.Load() {
		close(a.stopChan)
		<-a.doneChan
	}

	a.flushWg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.doFlushSync(ctx)
}

// Stats returns current runtime statistics.
func (a *Appender) Stats() AppenderStats {
	a.mu.Lock()
	bufferSize := len(a.buffer)
	a.mu.Unlock()

	var avgFlushTime time.Duration
	if count := a.flushCount.Load(); count > 0 {
		avgFlushTime = time.Duration(a.totalFlushTime.Load() / count)
	}

	var lastFlushTime time.Time
	if t, ok := a.lastFlushTime.Load().(time.Time); ok {
		lastFlushTime = t
	}
	var lastError string
	if e, ok := a.lastError.Load().(string); ok {
		lastError = e
	}

	return AppenderStats{
		EventsReceived: a.eventsReceived.Load(),
		EventsFlushed:  a.eventsFlushed.Load(),
		FlushCount:     a.flushCount.Load(),
		ErrorCount:     a.errorCount.Load(),
		LastFlushTime:  lastFlushTime,
		LastError:      lastError,
		BufferSize:     bufferSize,
		AvgFlushTime:   avgFlushTime,
	}
}

// flushLoop runs the periodic flush timer. The parent context only controls
// shutdown; each flush gets a fresh context with its own timeout.
func (a *Appender) flushLoop(ctx context.Context) {
	defer close(a.doneChan)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopChan:
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			a.doFlush(flushCtx)
			cancel()
		}
	}
}

func (a *Appender) doFlush(ctx context.Context) {
	if err := a.doFlushSync(ctx); err != nil {
		a.lastError.Store(err.Error())
		logging.Debug().Err(err).Msg("ingest: async flush error")
	}
}

// doFlushSync flushes the buffer in chunks of BatchSize. On a chunk error,
// the unflushed tail is restored to the buffer for retry.
func (a *Appender) doFlushSync(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return nil
	}

	events := a.buffer
	a.buffer = make([]*SwipeEvent, 0, a.config.BatchSize)
	a.mu.Unlock()

	totalFlushed := 0
	totalStart := time.Now()

	for start := 0; start < len(events); start += a.config.BatchSize {
		end := start + a.config.BatchSize
		if end > len(events) {
			end = len(events)
		}
		chunk := events[start:end]

		chunkStart := time.Now()
		err := a.flushChunk(ctx, chunk)
		chunkElapsed := time.Since(chunkStart)

		if err != nil {
			unflushed := events[start:]
			a.mu.Lock()
			a.buffer = append(unflushed, a.buffer...)
			a.mu.Unlock()

			a.errorCount.Add(1)
			a.lastError.Store(err.Error())
			if totalFlushed > 0 {
				a.eventsFlushed.Add(int64(totalFlushed))
				a.flushCount.Add(1)
			}
			return fmt.Errorf("flush events (chunk %d-%d): %w", start, end, err)
		}

		totalFlushed += len(chunk)
		metrics.RecordNATSBatchFlush(chunkElapsed, len(chunk))
	}

	totalElapsed := time.Since(totalStart)
	logging.Debug().
		Int("count", totalFlushed).
		Dur("elapsed", totalElapsed).
		Msg("ingest: flushed events to store")

	a.eventsFlushed.Add(int64(totalFlushed))
	a.flushCount.Add(1)
	a.totalFlushTime.Add(totalElapsed.Nanoseconds())
	a.lastFlushTime.Store(time.Now())
	a.lastError.Store("")

	return nil
}

// flushChunk upserts the chunk's repository snapshots before appending the
// interaction rows, so hydration never races against a missing snapshot.
func (a *Appender) flushChunk(ctx context.Context, chunk []*SwipeEvent) error {
	repos := make([]models.Repository, 0, len(chunk))
	seen := make(map[int64]struct{}, len(chunk))
	rows := make([]database.InteractionRow, 0, len(chunk))

	for _, ev := range chunk {
		if _, ok := seen[ev.Repository.ID]; !ok {
			seen[ev.Repository.ID] = struct{}{}
			repos = append(repos, ev.Repository)
		}
		rows = append(rows, database.InteractionRow{
			EventID:           ev.EventID,
			InteractionRecord: ev.Record(),
		})
	}

	if err := a.store.UpsertRepoSnapshots(ctx, repos); err != nil {
		return fmt.Errorf("upsert snapshots: %w", err)
	}
	if _, err := a.store.AppendInteractions(ctx, rows); err != nil {
		return fmt.Errorf("append interactions: %w", err)
	}
	return nil
}
