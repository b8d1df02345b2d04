// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

/*
Package supervisor provides process supervision for Reposcout using suture v4.

The supervisor tree organizes long-running services into three layers for
failure isolation:

	RootSupervisor ("reposcout")
	├── DataSupervisor ("data-layer")
	│   ├── BadgerGCService (preference store value-log GC)
	│   └── PoolJanitorService (candidate pool TTL expiry)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── EmbeddedNATSService (if embedded server enabled)
	│   ├── IngestRouterService (swipe event consumption)
	│   └── ClusterRefreshService (shortlist rebuilds)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the ingest pipeline does not affect the API layer's ability to
serve recommendations from already-built pools and shortlists, and storage
maintenance failures never take down messaging.

Crashed services restart automatically with exponential backoff; the
TreeConfig failure threshold, decay and backoff values match suture's
production defaults. Supervision events are logged through slog via the
sutureslog adapter.

Services must implement suture.Service. Returning nil stops the service
permanently; returning an error schedules a restart; on context
cancellation services should return promptly.

DuckDB is intentionally not supervised: it is an embedded library whose
connections the database package manages, and a crash there requires a
process restart anyway.
*/
package supervisor
