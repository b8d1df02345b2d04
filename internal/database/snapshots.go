// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
)

// ErrSnapshotNotFound reports a repo_snapshots cache miss.
var ErrSnapshotNotFound = errors.New("repository snapshot not found")

// UpsertRepoSnapshots stores or refreshes repository snapshots. A newer
// snapshot replaces the cached row wholesale.
func (db *DB) UpsertRepoSnapshots(ctx context.Context, repos []models.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	start := time.Now()
	err := db.upsertSnapshotsTx(ctx, repos)
	metrics.RecordDBQuery("upsert", "repo_snapshots", time.Since(start), err)
	return err
}

func (db *DB) upsertSnapshotsTx(ctx context.Context, repos []models.Repository) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO repo_snapshots (
			repo_id, full_name, description, language, topics_json,
			stars, forks, open_issues, repo_created_at, pushed_at,
			license, owner_login, owner_avatar_url, html_url,
			archived, has_readme, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (repo_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			description = EXCLUDED.description,
			language = EXCLUDED.language,
			topics_json = EXCLUDED.topics_json,
			stars = EXCLUDED.stars,
			forks = EXCLUDED.forks,
			open_issues = EXCLUDED.open_issues,
			repo_created_at = EXCLUDED.repo_created_at,
			pushed_at = EXCLUDED.pushed_at,
			license = EXCLUDED.license,
			owner_login = EXCLUDED.owner_login,
			owner_avatar_url = EXCLUDED.owner_avatar_url,
			html_url = EXCLUDED.html_url,
			archived = EXCLUDED.archived,
			has_readme = EXCLUDED.has_readme,
			fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for i := range repos {
		r := &repos[i]
		topicsJSON, err := encodeTopics(r.Topics)
		if err != nil {
			return fmt.Errorf("failed to encode topics for %s: %w", r.FullName, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.FullName, r.Description, r.Language, topicsJSON,
			r.Stars, r.Forks, r.OpenIssues, r.CreatedAt, r.PushedAt,
			r.License, r.OwnerLogin, r.OwnerAvatarURL, r.HTMLURL,
			r.Archived, r.HasReadme, now); err != nil {
			return fmt.Errorf("failed to upsert snapshot %s: %w", r.FullName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}
	return nil
}

// GetRepoSnapshot returns the cached snapshot for a repository ID, or
// ErrSnapshotNotFound on a miss.
func (db *DB) GetRepoSnapshot(ctx context.Context, repoID int64) (*models.Repository, error) {
	start := time.Now()

	query := `
		SELECT repo_id, full_name, description, language, topics_json,
		       stars, forks, open_issues, repo_created_at, pushed_at,
		       license, owner_login, owner_avatar_url, html_url,
		       archived, has_readme
		FROM repo_snapshots
		WHERE repo_id = ?`

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, repoID)
	if err != nil {
		metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer closeRows(rows)

	if !rows.Next() {
		err := rows.Err()
		metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		return nil, ErrSnapshotNotFound
	}

	repo, err := scanSnapshot(rows)
	metrics.RecordDBQuery("select", "repo_snapshots", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// scanSnapshot reads one repo_snapshots row in the canonical column order.
func scanSnapshot(rows *sql.Rows) (models.Repository, error) {
	var repo models.Repository
	var description, language, topicsJSON, license, ownerLogin, avatarURL, htmlURL sql.NullString
	var createdAt, pushedAt sql.NullTime

	if err := rows.Scan(
		&repo.ID, &repo.FullName, &description, &language, &topicsJSON,
		&repo.Stars, &repo.Forks, &repo.OpenIssues, &createdAt, &pushedAt,
		&license, &ownerLogin, &avatarURL, &htmlURL,
		&repo.Archived, &repo.HasReadme,
	); err != nil {
		return models.Repository{}, fmt.Errorf("failed to scan snapshot row: %w", err)
	}

	repo.Description = description.String
	repo.Language = language.String
	repo.Topics = decodeTopics(topicsJSON.String)
	repo.License = license.String
	repo.OwnerLogin = ownerLogin.String
	repo.OwnerAvatarURL = avatarURL.String
	repo.HTMLURL = htmlURL.String
	if createdAt.Valid {
		repo.CreatedAt = createdAt.Time
	}
	if pushedAt.Valid {
		repo.PushedAt = pushedAt.Time
	}
	return repo, nil
}

func encodeTopics(topics []string) (string, error) {
	if len(topics) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
