// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
)

// hydrateLimit caps how many saved/liked repositories are returned per user.
const hydrateLimit = 50

// InteractionRow is one swipe event ready for persistence. EventID is the
// JetStream message ID and doubles as the idempotency key: re-inserting an
// already-stored event is a silent no-op.
type InteractionRow struct {
	EventID string
	models.InteractionRecord
}

// AppendInteractions inserts a batch of interaction rows inside one
// transaction. Duplicate event IDs are skipped. Returns the number of rows
// actually inserted.
func (db *DB) AppendInteractions(ctx context.Context, rows []InteractionRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	start := time.Now()
	inserted, err := db.appendInteractionsTx(ctx, rows)
	metrics.RecordDBQuery("insert", "interactions", time.Since(start), err)
	return inserted, err
}

func (db *DB) appendInteractionsTx(ctx context.Context, rows []InteractionRow) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interactions (event_id, user_id, repo_id, action, source, position, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range rows {
		r := &rows[i]
		res, err := stmt.ExecContext(ctx,
			r.EventID, r.UserID, r.RepoID, string(r.Action), r.Source, r.Position, r.Timestamp)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert interaction %s: %w", r.EventID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit interactions: %w", err)
	}
	return inserted, nil
}

// SeenIDs returns every repository ID the user has already swiped on, in any
// direction. The recommendation cascade excludes these from all tiers.
func (db *DB) SeenIDs(ctx context.Context, userID string) (map[int64]struct{}, error) {
	start := time.Now()
	query := `SELECT DISTINCT repo_id FROM interactions WHERE user_id = ?`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID)
	if err != nil {
		metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
		return nil, fmt.Errorf("failed to query seen ids: %w", err)
	}
	defer closeRows(rows)

	seen := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan repo id: %w", err)
		}
		seen[id] = struct{}{}
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate seen ids: %w", err)
	}
	return seen, nil
}

// SavedRepos returns repositories the user saved, most recent first, hydrated
// from the snapshot cache.
func (db *DB) SavedRepos(ctx context.Context, userID string) ([]models.Repository, error) {
	return db.reposByAction(ctx, userID, models.ActionSave)
}

// LikedRepos returns repositories the user liked, most recent first, hydrated
// from the snapshot cache.
func (db *DB) LikedRepos(ctx context.Context, userID string) ([]models.Repository, error) {
	return db.reposByAction(ctx, userID, models.ActionLike)
}

func (db *DB) reposByAction(ctx context.Context, userID string, action models.InteractionAction) ([]models.Repository, error) {
	start := time.Now()

	// Latest interaction per repository wins; snapshots missing from the
	// cache drop out of the join rather than producing partial rows.
	query := `
		SELECT s.repo_id, s.full_name, s.description, s.language, s.topics_json,
		       s.stars, s.forks, s.open_issues, s.repo_created_at, s.pushed_at,
		       s.license, s.owner_login, s.owner_avatar_url, s.html_url,
		       s.archived, s.has_readme
		FROM repo_snapshots s
		JOIN (
			SELECT repo_id, MAX(occurred_at) AS last_at
			FROM interactions
			WHERE user_id = ? AND action = ?
			GROUP BY repo_id
		) i ON s.repo_id = i.repo_id
		ORDER BY i.last_at DESC
		LIMIT ?`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID, string(action), hydrateLimit)
	if err != nil {
		metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
		return nil, fmt.Errorf("failed to query %s repos: %w", action, err)
	}
	defer closeRows(rows)

	var repos []models.Repository
	for rows.Next() {
		repo, err := scanSnapshot(rows)
		if err != nil {
			metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
			return nil, err
		}
		repos = append(repos, repo)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate %s repos: %w", action, err)
	}
	return repos, nil
}

// TagSummaries aggregates the user's like/save/skip counts per topic tag.
// Tags come from the snapshot cache; interactions on repositories without a
// cached snapshot contribute nothing.
func (db *DB) TagSummaries(ctx context.Context, userID string) ([]models.InteractionSummary, error) {
	start := time.Now()

	query := `
		SELECT i.action, s.topics_json, COUNT(*) AS cnt
		FROM interactions i
		JOIN repo_snapshots s ON s.repo_id = i.repo_id
		WHERE i.user_id = ? AND i.action IN ('like', 'save', 'skip')
		GROUP BY i.action, s.topics_json`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID)
	if err != nil {
		metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
		return nil, fmt.Errorf("failed to query tag summaries: %w", err)
	}
	defer closeRows(rows)

	byTag := make(map[string]*models.InteractionSummary)
	for rows.Next() {
		var action, topicsJSON string
		var count int
		if err := rows.Scan(&action, &topicsJSON, &count); err != nil {
			metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan tag summary row: %w", err)
		}

		for _, tag := range decodeTopics(topicsJSON) {
			summary, ok := byTag[tag]
			if !ok {
				summary = &models.InteractionSummary{Tag: tag}
				byTag[tag] = summary
			}
			switch models.InteractionAction(action) {
			case models.ActionLike:
				summary.Likes += count
			case models.ActionSave:
				summary.Saves += count
			case models.ActionSkip:
				summary.Skips += count
			}
		}
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tag summaries: %w", err)
	}

	summaries := make([]models.InteractionSummary, 0, len(byTag))
	for _, s := range byTag {
		summaries = append(summaries, *s)
	}
	// Deterministic order for callers and tests
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Tag < summaries[j].Tag })
	return summaries, nil
}

// decodeTopics parses the stored JSON topic array. Malformed or empty values
// decode to no tags rather than an error; the column is cache data.
func decodeTopics(topicsJSON string) []string {
	if topicsJSON == "" {
		return nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(topicsJSON), &topics); err != nil {
		return nil
	}
	return topics
}
