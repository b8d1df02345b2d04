// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/nats-io/nats.go"

	"github.com/tomtom215/reposcout/internal/api"
	"github.com/tomtom215/reposcout/internal/config"
	"github.com/tomtom215/reposcout/internal/database"
	"github.com/tomtom215/reposcout/internal/ingest"
	"github.com/tomtom215/reposcout/internal/logging"
	"github.com/tomtom215/reposcout/internal/recommend/pool"
	"github.com/tomtom215/reposcout/internal/supervisor"
	"github.com/tomtom215/reposcout/internal/supervisor/services"
)

// IngestComponents holds the swipe ingestion pipeline for lifecycle
// management. All fields are nil when NATS is disabled; the API then
// answers swipe submissions with 503.
type IngestComponents struct {
	server     *ingest.EmbeddedServer
	nc         *nats.Conn
	publisher  *ingest.Publisher
	subscriber *ingest.Subscriber
	appender   *ingest.Appender
	router     *ingest.Router
}

// initIngest builds the swipe ingestion pipeline: embedded NATS server
// (optional), JetStream stream, publisher, durable consumer, and the batch
// appender writing to DuckDB. Pool refinement is wired into the consumer so
// swipes feed back into candidate ranking.
func initIngest(cfg *config.Config, db *database.DB, pools *pool.Manager) (*IngestComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Swipe ingestion disabled (NATS_ENABLED=false)")
		return &IngestComponents{}, nil
	}

	c := &IngestComponents{}

	url := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		server, err := ingest.NewEmbeddedServer(&ingest.ServerConfig{
			Host:              "127.0.0.1",
			Port:              cfg.NATS.Port,
			StoreDir:          cfg.NATS.StoreDir,
			JetStreamMaxMem:   cfg.NATS.MaxMemory,
			JetStreamMaxStore: cfg.NATS.MaxStore,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded nats server: %w", err)
		}
		c.server = server
		url = server.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	nc, err := nats.Connect(url)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	c.nc = nc

	streamCfg := ingest.DefaultStreamConfig()
	streamMgr, err := ingest.NewStreamManager(nc, &streamCfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create stream manager: %w", err)
	}
	ensureCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := streamMgr.EnsureStream(ensureCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("ensure swipe stream: %w", err)
	}

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())

	publisher, err := ingest.NewPublisher(ingest.DefaultPublisherConfig(url), wmLogger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	c.publisher = publisher

	subCfg := ingest.DefaultSubscriberConfig(url)
	if cfg.Ingest.DurableName != "" {
		subCfg.DurableName = cfg.Ingest.DurableName
	}
	if cfg.Ingest.QueueGroup != "" {
		subCfg.QueueGroup = cfg.Ingest.QueueGroup
	}
	if cfg.Ingest.Subscribers > 0 {
		subCfg.SubscribersCount = cfg.Ingest.Subscribers
	}
	subscriber, err := ingest.NewSubscriber(&subCfg, wmLogger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	c.subscriber = subscriber

	appenderCfg := ingest.DefaultAppenderConfig()
	if cfg.Ingest.BatchSize > 0 {
		appenderCfg.BatchSize = cfg.Ingest.BatchSize
	}
	if cfg.Ingest.FlushInterval > 0 {
		appenderCfg.FlushInterval = cfg.Ingest.FlushInterval
	}
	appender, err := ingest.NewAppender(db, appenderCfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create appender: %w", err)
	}
	if err := appender.Start(context.Background()); err != nil {
		c.Close()
		return nil, fmt.Errorf("start appender: %w", err)
	}
	c.appender = appender

	handler, err := ingest.NewSwipeHandler(appender, pools, db)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create swipe handler: %w", err)
	}

	routerCfg := routerConfigFromNATS(&cfg.NATS)
	router, err := ingest.NewRouter(&routerCfg, publisher.WatermillPublisher(), wmLogger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}
	router.AddConsumerHandler(
		"swipe-processor",
		ingest.TopicSwipes,
		subscriber.WatermillSubscriber(),
		handler.Handle,
	)
	c.router = router

	logging.Info().
		Str("durable", subCfg.DurableName).
		Int("subscribers", subCfg.SubscribersCount).
		Int("batch_size", appenderCfg.BatchSize).
		Msg("Swipe ingestion pipeline initialized")

	return c, nil
}

// routerConfigFromNATS overlays configured router settings onto defaults.
func routerConfigFromNATS(cfg *config.NATSConfig) ingest.RouterConfig {
	rc := ingest.DefaultRouterConfig()
	if cfg.RouterRetryCount > 0 {
		rc.RetryMaxRetries = cfg.RouterRetryCount
	}
	if cfg.RouterRetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RouterRetryInitialInterval
	}
	rc.ThrottlePerSecond = cfg.RouterThrottlePerSecond
	rc.DeduplicationEnabled = cfg.RouterDeduplicationEnabled
	if cfg.RouterDeduplicationTTL > 0 {
		rc.DeduplicationTTL = cfg.RouterDeduplicationTTL
	}
	if !cfg.RouterPoisonQueueEnabled {
		rc.PoisonQueueTopic = ""
	} else if cfg.RouterPoisonQueueTopic != "" {
		rc.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
	}
	if cfg.RouterCloseTimeout > 0 {
		rc.CloseTimeout = cfg.RouterCloseTimeout
	}
	return rc
}

// SwipePublisher returns the publisher behind the swipe endpoint, or nil
// when ingestion is disabled.
func (c *IngestComponents) SwipePublisher() api.SwipePublisher {
	if c == nil || c.publisher == nil {
		return nil
	}
	return c.publisher
}

// AddToTree registers the pipeline's long-running pieces under the
// messaging layer of the supervisor tree.
func (c *IngestComponents) AddToTree(tree *supervisor.SupervisorTree) {
	if c.server != nil {
		tree.AddMessagingService(services.NewEmbeddedNATSService(c.server, 10*time.Second))
	}
	if c.router != nil {
		tree.AddMessagingService(services.NewIngestRouterService(c.router))
	}
}

// Close tears the pipeline down in consume-to-produce order so buffered
// events are flushed before connections drop.
func (c *IngestComponents) Close() {
	if c == nil {
		return
	}
	if c.router != nil {
		if err := c.router.Close(); err != nil {
			logging.Warn().Err(err).Msg("Ingest router close failed")
		}
	}
	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Warn().Err(err).Msg("Ingest subscriber close failed")
		}
	}
	if c.appender != nil {
		if err := c.appender.Close(); err != nil {
			logging.Warn().Err(err).Msg("Ingest appender close failed")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Ingest publisher close failed")
		}
	}
	if c.nc != nil {
		c.nc.Close()
	}
	if c.server != nil && c.server.IsRunning() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Embedded NATS shutdown failed")
		}
	}
}
