// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package compare ranks repositories against each other: per-category
// winners, an overall winner and a short verdict. Pure computation; the
// caller supplies repositories and their activity signals.
package compare

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reposcout/internal/metrics"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/recommend/scoring"
)

// ErrInsufficientInput is returned when fewer than two distinct
// repositories are supplied.
var ErrInsufficientInput = errors.New("comparison requires at least two distinct repositories")

// Input pairs a repository with its optional activity signals.
type Input struct {
	Repo    models.Repository
	Signals *models.AuxSignals
}

// Entry is one compared repository with its computed health score.
type Entry struct {
	Repo  models.Repository  `json:"repository"`
	Score models.HealthScore `json:"score"`
}

// CategoryResult names the winner of one score category.
type CategoryResult struct {
	Category string  `json:"category"`
	WinnerID int64   `json:"winner_id"`
	Margin   float64 `json:"margin"`
}

// Result is a full comparison outcome. Entries preserve input order.
type Result struct {
	Entries         []Entry          `json:"entries"`
	CategoryWinners []CategoryResult `json:"category_winners"`
	OverallWinnerID int64            `json:"overall_winner_id"`
	Verdict         string           `json:"verdict"`
}

// Engine scores and compares repositories.
type Engine struct {
	scorer *scoring.Scorer
	logger zerolog.Logger
}

// NewEngine creates a comparison engine.
func NewEngine(scorer *scoring.Scorer, logger *zerolog.Logger) (*Engine, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	return &Engine{
		scorer: scorer,
		logger: logger.With().Str("component", "compare").Logger(),
	}, nil
}

// Compare scores every input and determines category winners, the overall
// winner and a verdict. Duplicate repository IDs collapse to their first
// occurrence; fewer than two distinct repositories is ErrInsufficientInput.
//
// Ties resolve deterministically: higher category score, then higher overall,
// then more stars, then earliest input position.
func (e *Engine) Compare(inputs []Input) (*Result, error) {
	entries := make([]Entry, 0, len(inputs))
	seen := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.Repo.ID]; dup {
			continue
		}
		seen[in.Repo.ID] = struct{}{}
		entries = append(entries, Entry{
			Repo:  in.Repo,
			Score: e.scorer.Score(&in.Repo, in.Signals),
		})
	}
	if len(entries) < 2 {
		return nil, ErrInsufficientInput
	}

	result := &Result{
		Entries:         entries,
		CategoryWinners: make([]CategoryResult, 0, len(models.ScoreCategories)),
	}

	wins := make(map[int64]int, len(entries))
	for _, category := range models.ScoreCategories {
		winner, margin := e.categoryWinner(entries, category)
		result.CategoryWinners = append(result.CategoryWinners, CategoryResult{
			Category: category,
			WinnerID: entries[winner].Repo.ID,
			Margin:   margin,
		})
		wins[entries[winner].Repo.ID]++
	}

	overall := 0
	for i := 1; i < len(entries); i++ {
		if beatsOverall(entries[overall], entries[i]) {
			overall = i
		}
	}
	result.OverallWinnerID = entries[overall].Repo.ID
	result.Verdict = e.verdict(entries, overall, wins[entries[overall].Repo.ID])

	metrics.Comparisons.Inc()
	e.logger.Debug().
		Int("repositories", len(entries)).
		Int64("winner_id", result.OverallWinnerID).
		Msg("Comparison completed")
	return result, nil
}

// categoryWinner returns the index of the winning entry for a category and
// the margin over the runner-up.
func (e *Engine) categoryWinner(entries []Entry, category string) (int, float64) {
	winner := 0
	for i := 1; i < len(entries); i++ {
		if beatsInCategory(entries[winner], entries[i], category) {
			winner = i
		}
	}

	winnerScore := entries[winner].Score.Categories()[category]
	margin := winnerScore
	for i, entry := range entries {
		if i == winner {
			continue
		}
		if gap := winnerScore - entry.Score.Categories()[category]; gap < margin {
			margin = gap
		}
	}
	return winner, margin
}

// beatsInCategory reports whether challenger strictly beats holder in a
// category. Strict inequalities keep the earliest entry on full ties.
func beatsInCategory(holder, challenger Entry, category string) bool {
	hv := holder.Score.Categories()[category]
	cv := challenger.Score.Categories()[category]
	if cv != hv {
		return cv > hv
	}
	return beatsOverall(holder, challenger)
}

// beatsOverall reports whether challenger strictly beats holder on overall
// score, falling back to stars.
func beatsOverall(holder, challenger Entry) bool {
	if challenger.Score.Overall != holder.Score.Overall {
		return challenger.Score.Overall > holder.Score.Overall
	}
	return challenger.Repo.Stars > holder.Repo.Stars
}

// verdict renders a one-line summary of the comparison outcome.
func (e *Engine) verdict(entries []Entry, winner, categoryWins int) string {
	w := entries[winner]
	total := len(models.ScoreCategories)

	if categoryWins == total {
		return fmt.Sprintf("%s sweeps all %d categories with grade %s (%.1f overall)",
			w.Repo.FullName, total, w.Score.Grade, w.Score.Overall)
	}

	// Closest rival by overall score.
	rival := -1
	for i := range entries {
		if i == winner {
			continue
		}
		if rival < 0 || entries[i].Score.Overall > entries[rival].Score.Overall {
			rival = i
		}
	}

	base := fmt.Sprintf("%s leads with grade %s (%.1f overall), taking %d of %d categories",
		w.Repo.FullName, w.Score.Grade, w.Score.Overall, categoryWins, total)
	if rival >= 0 && w.Score.Overall-entries[rival].Score.Overall < 5 {
		return fmt.Sprintf("%s, narrowly ahead of %s", base, entries[rival].Repo.FullName)
	}
	return base
}
