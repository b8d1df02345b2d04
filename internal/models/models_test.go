// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package models

import (
	"reflect"
	"testing"
)

func TestGradeRankOrdering(t *testing.T) {
	t.Parallel()

	ordered := []Grade{GradeF, GradeD, GradeC, GradeCPlus, GradeB, GradeBPlus, GradeA, GradeAPlus}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("grade %s (rank %d) should outrank %s (rank %d)",
				ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}

	if Grade("Z").Rank() != -1 {
		t.Errorf("unknown grade rank = %d, want -1", Grade("Z").Rank())
	}
}

func TestWeightLevelIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level WeightLevel
		want  bool
	}{
		{WeightLow, true},
		{WeightNormal, true},
		{WeightHigh, true},
		{WeightLevel(""), false},
		{WeightLevel("extreme"), false},
	}

	for _, tt := range tests {
		if got := tt.level.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestInteractionActionIsValid(t *testing.T) {
	t.Parallel()

	valid := []InteractionAction{ActionView, ActionLike, ActionSave, ActionSkip}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("expected %q to be valid", a)
		}
	}
	if InteractionAction("dislike").IsValid() {
		t.Error("expected 'dislike' to be invalid")
	}
}

func TestRepositoryHasTopic(t *testing.T) {
	t.Parallel()

	repo := Repository{Topics: []string{"cli", "terminal"}}

	if !repo.HasTopic("cli") {
		t.Error("expected HasTopic(cli) to be true")
	}
	if repo.HasTopic("gui") {
		t.Error("expected HasTopic(gui) to be false")
	}
}

func TestPreferencesInterests(t *testing.T) {
	t.Parallel()

	prefs := UserPreferences{
		Languages:  []string{"Go", "rust", " Go "},
		Frameworks: []string{"Chi", ""},
		Domains:    []string{"cli-tools", "rust"},
	}

	got := prefs.Interests()
	want := []string{"chi", "cli-tools", "go", "rust"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interests() = %v, want %v", got, want)
	}
}

func TestPreferencesFingerprint(t *testing.T) {
	t.Parallel()

	a := UserPreferences{Languages: []string{"go", "rust"}, PopularityWeight: WeightNormal}
	b := UserPreferences{Languages: []string{"rust", "go"}, PopularityWeight: WeightNormal}
	c := UserPreferences{Languages: []string{"go", "rust"}, PopularityWeight: WeightHigh}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint should not depend on slice ordering")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint should change when a knob changes")
	}
}

func TestDefaultPreferences(t *testing.T) {
	t.Parallel()

	prefs := DefaultPreferences()

	if prefs.PopularityWeight != WeightNormal {
		t.Errorf("default popularity weight = %q, want %q", prefs.PopularityWeight, WeightNormal)
	}
	if prefs.WantsHighPopularity() {
		t.Error("defaults should not request high popularity")
	}
	if prefs.OnboardingDone {
		t.Error("defaults should have onboarding not done")
	}

	prefs.PopularityWeight = WeightHigh
	if !prefs.WantsHighPopularity() {
		t.Error("high popularity weight should report WantsHighPopularity")
	}
}

func TestScoreCategoriesCoverHealthScore(t *testing.T) {
	t.Parallel()

	score := HealthScore{
		Popularity:    10,
		Activity:      20,
		Maintenance:   30,
		Community:     40,
		Documentation: 50,
		Maturity:      60,
	}

	cats := score.Categories()
	if len(cats) != len(ScoreCategories) {
		t.Fatalf("Categories() has %d entries, want %d", len(cats), len(ScoreCategories))
	}
	for _, name := range ScoreCategories {
		if _, ok := cats[name]; !ok {
			t.Errorf("category %q missing from Categories()", name)
		}
	}
	if cats[CategoryMaturity] != 60 {
		t.Errorf("maturity = %v, want 60", cats[CategoryMaturity])
	}
}
