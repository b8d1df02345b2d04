// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package models

import (
	"time"
)

// Repository is an immutable snapshot of one remote repository at fetch time.
//
// Snapshots are created when fetched from the remote search API and are never
// mutated afterwards; a newer snapshot from a re-fetch supersedes an older one.
// Optional facts (license, language, description) are plain zero-value fields
// rather than ad hoc shapes so that merging results from different sources
// never requires shape checking.
//
// Fields:
//   - ID: stable, platform-assigned identifier
//   - FullName: "owner/name" form
//   - Topics: declared topic tags; insertion order is irrelevant
//   - Stars, Forks: point-in-time counts
//   - CreatedAt, PushedAt: repository creation and last-push timestamps
type Repository struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	Description    string    `json:"description,omitempty"`
	Language       string    `json:"language,omitempty"`
	Topics         []string  `json:"topics,omitempty"`
	Stars          int       `json:"stars"`
	Forks          int       `json:"forks"`
	OpenIssues     int       `json:"open_issues"`
	CreatedAt      time.Time `json:"created_at"`
	PushedAt       time.Time `json:"pushed_at"`
	License        string    `json:"license,omitempty"`
	OwnerLogin     string    `json:"owner_login"`
	OwnerAvatarURL string    `json:"owner_avatar_url,omitempty"`
	HTMLURL        string    `json:"html_url"`
	Archived       bool      `json:"archived,omitempty"`
	HasReadme      bool      `json:"has_readme"`
}

// HasTopic reports whether the repository declares the given topic tag.
func (r *Repository) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// AuxSignals carries auxiliary health signals for a repository that are not
// part of the search snapshot itself (fetched separately, passed in already
// resolved — the scorer never performs network access).
//
// IssueCloseRate is a pointer: nil means the repository never had issues
// opened, which is excluded from the maintenance formula rather than treated
// as a zero rate.
type AuxSignals struct {
	Contributors    int      `json:"contributors"`
	Releases        int      `json:"releases"`
	CommitsLastYear int      `json:"commits_last_year"`
	IssueCloseRate  *float64 `json:"issue_close_rate,omitempty"`
}

// Grade is the discrete letter bucket of an overall health score.
type Grade string

// Grade buckets, best to worst. Thresholds are monotonic and contiguous.
const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// gradeRanks orders grades from worst (0) to best.
var gradeRanks = map[Grade]int{
	GradeF:     0,
	GradeD:     1,
	GradeC:     2,
	GradeCPlus: 3,
	GradeB:     4,
	GradeBPlus: 5,
	GradeA:     6,
	GradeAPlus: 7,
}

// Rank returns the ordinal position of the grade, 0 (F) to 7 (A+).
// Unknown grades rank below F.
func (g Grade) Rank() int {
	if r, ok := gradeRanks[g]; ok {
		return r
	}
	return -1
}

// HealthScore is the six-factor quality assessment of a repository.
//
// All sub-scores and Overall are in [0,100]. The score is a pure function of
// a Repository snapshot plus AuxSignals and is recomputed on demand, never
// persisted with the snapshot.
type HealthScore struct {
	Popularity    float64 `json:"popularity"`
	Activity      float64 `json:"activity"`
	Maintenance   float64 `json:"maintenance"`
	Community     float64 `json:"community"`
	Documentation float64 `json:"documentation"`
	Maturity      float64 `json:"maturity"`
	Overall       float64 `json:"overall"`
	Grade         Grade   `json:"grade"`
}

// Categories returns the six sub-scores keyed by category name.
// Iteration should use ScoreCategories for a stable order.
func (h *HealthScore) Categories() map[string]float64 {
	return map[string]float64{
		CategoryPopularity:    h.Popularity,
		CategoryActivity:      h.Activity,
		CategoryMaintenance:   h.Maintenance,
		CategoryCommunity:     h.Community,
		CategoryDocumentation: h.Documentation,
		CategoryMaturity:      h.Maturity,
	}
}

// Health score category names.
const (
	CategoryPopularity    = "popularity"
	CategoryActivity      = "activity"
	CategoryMaintenance   = "maintenance"
	CategoryCommunity     = "community"
	CategoryDocumentation = "documentation"
	CategoryMaturity      = "maturity"
)

// ScoreCategories lists the six category names in canonical order.
// Comparisons and verdict rendering iterate in this order so that output is
// deterministic.
var ScoreCategories = []string{
	CategoryPopularity,
	CategoryActivity,
	CategoryMaintenance,
	CategoryCommunity,
	CategoryDocumentation,
	CategoryMaturity,
}
