// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package services provides suture.Service wrappers for Reposcout components.

Each wrapper translates a component's native lifecycle (ListenAndServe,
Run, ticker loop, Shutdown) into suture's context-aware Serve pattern and
identifies itself via fmt.Stringer for supervision logs.

Available services:

  - HTTPServerService: *http.Server with graceful shutdown
  - EmbeddedNATSService: embedded JetStream server lifecycle
  - IngestRouterService: the Watermill router consuming swipe events
  - ClusterRefreshService: periodic cluster shortlist rebuilds
  - PoolJanitorService: periodic candidate pool TTL expiry
  - BadgerGCService: periodic preference store value-log GC

The periodic services follow one shape: optional run-on-start, a ticker,
work errors logged but never returned (a failed maintenance pass is not a
service crash), and ctx.Err() returned on shutdown.
*/
package services
