// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package database

// Schema notes:
//
//   - interactions is append-only. event_id is the JetStream message ID, so
//     re-delivered events collapse via ON CONFLICT DO NOTHING and ingestion
//     stays idempotent across restarts.
//   - repo_snapshots is a metadata cache keyed by the platform repository ID.
//     A newer snapshot replaces an older one wholesale; topics are stored as
//     a JSON array string to keep scanning driver-portable.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS interactions (
	event_id    TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	repo_id     BIGINT NOT NULL,
	action      TEXT NOT NULL,
	source      TEXT,
	position    INTEGER,
	occurred_at TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_interactions_user_time
	ON interactions(user_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_interactions_user_action
	ON interactions(user_id, action);

CREATE TABLE IF NOT EXISTS repo_snapshots (
	repo_id          BIGINT PRIMARY KEY,
	full_name        TEXT NOT NULL,
	description      TEXT,
	language         TEXT,
	topics_json      TEXT,
	stars            INTEGER NOT NULL DEFAULT 0,
	forks            INTEGER NOT NULL DEFAULT 0,
	open_issues      INTEGER NOT NULL DEFAULT 0,
	repo_created_at  TIMESTAMPTZ,
	pushed_at        TIMESTAMPTZ,
	license          TEXT,
	owner_login      TEXT,
	owner_avatar_url TEXT,
	html_url         TEXT,
	archived         BOOLEAN NOT NULL DEFAULT FALSE,
	has_readme       BOOLEAN NOT NULL DEFAULT FALSE,
	fetched_at       TIMESTAMPTZ NOT NULL
);
`

// createSchema creates all tables and indexes if they do not exist.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	_, err := db.conn.ExecContext(ctx, createSchemaSQL)
	return err
}
