// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package scoring implements the repository health scorer.
//
// The scorer is a pure function of a Repository snapshot plus AuxSignals: no
// network access, no side effects, deterministic for a fixed clock. Six
// sub-scores in [0,100] (popularity, activity, maintenance, community,
// documentation, maturity) combine into a weighted overall score and a
// discrete letter grade.
//
// Unbounded counts (stars, forks, contributors, releases, commits) are
// log-scaled against a configurable ceiling so that extreme outliers saturate
// instead of dominating. Missing signals degrade to the worst-case input for
// that sub-score; they never produce an error or NaN. The one exception is
// the issue-close rate: a repository that never had issues opened has an
// undefined rate, which is excluded from the maintenance formula rather than
// counted as zero.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/reposcout/internal/models"
)

// Weights holds the relative weight of each sub-score in the overall score.
// They are normalized before use, so only the ratios matter.
type Weights struct {
	Popularity    float64 `koanf:"popularity" json:"popularity"`
	Activity      float64 `koanf:"activity" json:"activity"`
	Maintenance   float64 `koanf:"maintenance" json:"maintenance"`
	Community     float64 `koanf:"community" json:"community"`
	Documentation float64 `koanf:"documentation" json:"documentation"`
	Maturity      float64 `koanf:"maturity" json:"maturity"`
}

// DefaultWeights returns the default sub-score weighting.
func DefaultWeights() Weights {
	return Weights{
		Popularity:    0.20,
		Activity:      0.20,
		Maintenance:   0.15,
		Community:     0.15,
		Documentation: 0.15,
		Maturity:      0.15,
	}
}

// sum returns the total of all weights.
func (w Weights) sum() float64 {
	return w.Popularity + w.Activity + w.Maintenance + w.Community + w.Documentation + w.Maturity
}

// Config holds scorer tuning. The ceilings are the input values at which a
// log-scaled sub-score saturates at 100.
type Config struct {
	// Weights for combining sub-scores into the overall score.
	Weights Weights `koanf:"weights" json:"weights"`

	// StarCeiling saturates the popularity score. Default: 100000
	StarCeiling int `koanf:"star_ceiling" json:"star_ceiling"`

	// CommitCeiling saturates the 52-week commit volume component. Default: 500
	CommitCeiling int `koanf:"commit_ceiling" json:"commit_ceiling"`

	// ContributorCeiling saturates the contributor component. Default: 300
	ContributorCeiling int `koanf:"contributor_ceiling" json:"contributor_ceiling"`

	// ForkCeiling saturates the fork component. Default: 10000
	ForkCeiling int `koanf:"fork_ceiling" json:"fork_ceiling"`

	// ReleaseCeiling saturates the release count component. Default: 50
	ReleaseCeiling int `koanf:"release_ceiling" json:"release_ceiling"`

	// TopicTarget is the topic count granting full documentation topic credit.
	// Default: 5
	TopicTarget int `koanf:"topic_target" json:"topic_target"`

	// MatureAfterYears is the repository age granting full maturity age credit.
	// Default: 5
	MatureAfterYears float64 `koanf:"mature_after_years" json:"mature_after_years"`

	// StaleAfterDays is the push recency window: a repository last pushed this
	// many days ago (or more) gets zero recency credit. Default: 365
	StaleAfterDays int `koanf:"stale_after_days" json:"stale_after_days"`

	// GradeThresholds maps overall score to letter grades, best first. Must be
	// strictly decreasing. An overall below the last threshold grades F.
	// Default: 90, 80, 70, 60, 50, 40, 30 for A+, A, B+, B, C+, C, D.
	GradeThresholds []float64 `koanf:"grade_thresholds" json:"grade_thresholds"`

	// InactiveActivityFloor marks a repository as effectively inactive when
	// its activity sub-score falls below this value. Default: 10
	InactiveActivityFloor float64 `koanf:"inactive_activity_floor" json:"inactive_activity_floor"`

	// InactiveOverallCap caps the overall score of an inactive repository.
	// Popularity cannot carry an abandoned project to a good grade. Default: 45
	InactiveOverallCap float64 `koanf:"inactive_overall_cap" json:"inactive_overall_cap"`
}

// DefaultConfig returns the default scorer configuration.
func DefaultConfig() Config {
	return Config{
		Weights:               DefaultWeights(),
		StarCeiling:           100000,
		CommitCeiling:         500,
		ContributorCeiling:    300,
		ForkCeiling:           10000,
		ReleaseCeiling:        50,
		TopicTarget:           5,
		MatureAfterYears:      5,
		StaleAfterDays:        365,
		GradeThresholds:       []float64{90, 80, 70, 60, 50, 40, 30},
		InactiveActivityFloor: 10,
		InactiveOverallCap:    45,
	}
}

// gradeLadder pairs each threshold slot with its grade, best first.
// The final F bucket has no threshold; it catches everything below the last.
var gradeLadder = []models.Grade{
	models.GradeAPlus,
	models.GradeA,
	models.GradeBPlus,
	models.GradeB,
	models.GradeCPlus,
	models.GradeC,
	models.GradeD,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Weights.sum() <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value")
	}
	if c.StarCeiling <= 0 {
		return fmt.Errorf("star_ceiling must be positive, got %d", c.StarCeiling)
	}
	if c.StaleAfterDays <= 0 {
		return fmt.Errorf("stale_after_days must be positive, got %d", c.StaleAfterDays)
	}
	if len(c.GradeThresholds) != len(gradeLadder) {
		return fmt.Errorf("grade_thresholds must have %d entries, got %d",
			len(gradeLadder), len(c.GradeThresholds))
	}
	for i := 1; i < len(c.GradeThresholds); i++ {
		if c.GradeThresholds[i] >= c.GradeThresholds[i-1] {
			return fmt.Errorf("grade_thresholds must be strictly decreasing at index %d", i)
		}
	}
	if c.InactiveOverallCap <= 0 || c.InactiveOverallCap > 100 {
		return fmt.Errorf("inactive_overall_cap must be in (0,100], got %v", c.InactiveOverallCap)
	}
	if c.InactiveActivityFloor < 0 || c.InactiveActivityFloor >= 100 {
		return fmt.Errorf("inactive_activity_floor must be in [0,100), got %v", c.InactiveActivityFloor)
	}
	return nil
}

// Scorer computes health scores. Safe for concurrent use: it holds no mutable
// state beyond its configuration.
type Scorer struct {
	cfg Config

	// now is replaceable in tests to pin age and recency calculations.
	now func() time.Time
}

// NewScorer creates a scorer, applying defaults for zero-valued config fields.
func NewScorer(cfg Config) (*Scorer, error) {
	def := DefaultConfig()
	if cfg.Weights.sum() == 0 {
		cfg.Weights = def.Weights
	}
	if cfg.StarCeiling == 0 {
		cfg.StarCeiling = def.StarCeiling
	}
	if cfg.CommitCeiling == 0 {
		cfg.CommitCeiling = def.CommitCeiling
	}
	if cfg.ContributorCeiling == 0 {
		cfg.ContributorCeiling = def.ContributorCeiling
	}
	if cfg.ForkCeiling == 0 {
		cfg.ForkCeiling = def.ForkCeiling
	}
	if cfg.ReleaseCeiling == 0 {
		cfg.ReleaseCeiling = def.ReleaseCeiling
	}
	if cfg.TopicTarget == 0 {
		cfg.TopicTarget = def.TopicTarget
	}
	if cfg.MatureAfterYears == 0 {
		cfg.MatureAfterYears = def.MatureAfterYears
	}
	if cfg.StaleAfterDays == 0 {
		cfg.StaleAfterDays = def.StaleAfterDays
	}
	if len(cfg.GradeThresholds) == 0 {
		cfg.GradeThresholds = def.GradeThresholds
	}
	if cfg.InactiveActivityFloor == 0 {
		cfg.InactiveActivityFloor = def.InactiveActivityFloor
	}
	if cfg.InactiveOverallCap == 0 {
		cfg.InactiveOverallCap = def.InactiveOverallCap
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Scorer{cfg: cfg, now: time.Now}, nil
}

// Score computes the health score for a repository snapshot plus its
// auxiliary signals. Signals may be nil, which is treated as all signals
// missing (worst case), not as an error.
func (s *Scorer) Score(repo *models.Repository, signals *models.AuxSignals) models.HealthScore {
	if signals == nil {
		signals = &models.AuxSignals{}
	}

	score := models.HealthScore{
		Popularity:    s.popularity(repo),
		Activity:      s.activity(repo, signals),
		Maintenance:   s.maintenance(signals),
		Community:     s.community(repo, signals),
		Documentation: s.documentation(repo),
		Maturity:      s.maturity(repo, signals),
	}

	w := s.cfg.Weights
	total := w.sum()
	score.Overall = clamp(
		(score.Popularity*w.Popularity +
			score.Activity*w.Activity +
			score.Maintenance*w.Maintenance +
			score.Community*w.Community +
			score.Documentation*w.Documentation +
			score.Maturity*w.Maturity) / total)

	// An effectively inactive repository cannot grade well on popularity
	// alone: cap the overall score below the C+ band.
	if score.Activity < s.cfg.InactiveActivityFloor && score.Overall > s.cfg.InactiveOverallCap {
		score.Overall = s.cfg.InactiveOverallCap
	}
	score.Grade = s.GradeFor(score.Overall)

	return score
}

// QuickScore estimates repository quality from the search snapshot alone,
// without auxiliary signals. It ranks pool candidates, where a per-repository
// signal fetch would multiply remote calls by the pool size. The commit-volume
// and issue-close components are unavailable at snapshot scope and are
// excluded from the formula (not zeroed); push recency stands in for
// activity and fork count for community.
func (s *Scorer) QuickScore(repo *models.Repository) float64 {
	w := s.cfg.Weights
	total := w.Popularity + w.Activity + w.Documentation + w.Community + w.Maturity
	if total <= 0 {
		return 0
	}
	sum := w.Popularity*s.popularity(repo) +
		w.Activity*s.recency(repo.PushedAt) +
		w.Documentation*s.documentation(repo) +
		w.Community*logScale(repo.Forks, s.cfg.ForkCeiling) +
		w.Maturity*s.ageScore(repo.CreatedAt)
	return clamp(sum / total)
}

// GradeFor maps an overall score to its letter grade via the threshold ladder.
func (s *Scorer) GradeFor(overall float64) models.Grade {
	for i, threshold := range s.cfg.GradeThresholds {
		if overall >= threshold {
			return gradeLadder[i]
		}
	}
	return models.GradeF
}

// popularity is a saturating function of star count: log-scaled so that the
// difference between 100 and 1000 stars matters more than the difference
// between 50000 and 60000.
func (s *Scorer) popularity(repo *models.Repository) float64 {
	return logScale(repo.Stars, s.cfg.StarCeiling)
}

// activity combines push recency with 52-week commit volume. A repository
// with no commits in the lookback window scores near zero regardless of its
// star count; recency alone contributes only a residual.
func (s *Scorer) activity(repo *models.Repository, signals *models.AuxSignals) float64 {
	recency := s.recency(repo.PushedAt)
	if signals.CommitsLastYear <= 0 {
		return clamp(recency * 0.1)
	}
	volume := logScale(signals.CommitsLastYear, s.cfg.CommitCeiling)
	return clamp(0.4*recency + 0.6*volume)
}

// recency scores how fresh the last push is: 100 for a push right now,
// decaying linearly to 0 at the stale window boundary.
func (s *Scorer) recency(pushedAt time.Time) float64 {
	if pushedAt.IsZero() {
		return 0
	}
	age := s.now().Sub(pushedAt)
	if age <= 0 {
		return 100
	}
	window := time.Duration(s.cfg.StaleAfterDays) * 24 * time.Hour
	if age >= window {
		return 0
	}
	return 100 * (1 - float64(age)/float64(window))
}

// maintenance combines issue-close rate with release cadence. An undefined
// close rate (no issues ever opened) drops that component from the formula
// entirely instead of counting as zero.
func (s *Scorer) maintenance(signals *models.AuxSignals) float64 {
	cadence := logScale(signals.Releases, s.cfg.ReleaseCeiling)
	if signals.IssueCloseRate == nil {
		return clamp(cadence)
	}
	closeRate := clamp(*signals.IssueCloseRate * 100)
	return clamp(0.6*closeRate + 0.4*cadence)
}

// community combines contributor count with fork count.
func (s *Scorer) community(repo *models.Repository, signals *models.AuxSignals) float64 {
	contributors := logScale(signals.Contributors, s.cfg.ContributorCeiling)
	forks := logScale(repo.Forks, s.cfg.ForkCeiling)
	return clamp(0.6*contributors + 0.4*forks)
}

// documentation uses proxy signals only: README presence, description
// presence and declared topic count. No content analysis.
func (s *Scorer) documentation(repo *models.Repository) float64 {
	var score float64
	if repo.HasReadme {
		score += 40
	}
	if repo.Description != "" {
		score += 30
	}
	topics := float64(len(repo.Topics)) / float64(s.cfg.TopicTarget)
	if topics > 1 {
		topics = 1
	}
	score += 30 * topics
	return clamp(score)
}

// maturity combines repository age with release count.
func (s *Scorer) maturity(repo *models.Repository, signals *models.AuxSignals) float64 {
	releases := logScale(signals.Releases, s.cfg.ReleaseCeiling)
	return clamp(0.6*s.ageScore(repo.CreatedAt) + 0.4*releases)
}

// ageScore scores repository age linearly up to the maturity horizon.
func (s *Scorer) ageScore(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	years := s.now().Sub(createdAt).Hours() / (24 * 365.25)
	return clamp(100 * years / s.cfg.MatureAfterYears)
}

// logScale maps a non-negative count onto [0,100] with log10 damping,
// saturating at the ceiling. Zero and negative counts map to 0.
func logScale(value, ceiling int) float64 {
	if value <= 0 || ceiling <= 0 {
		return 0
	}
	scaled := 100 * math.Log10(1+float64(value)) / math.Log10(1+float64(ceiling))
	return clamp(scaled)
}

// clamp bounds a score to [0,100] and maps NaN to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
