// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package models

import (
	"sort"
	"strings"
	"time"
)

// WeightLevel expresses how strongly a user wants a signal emphasized.
type WeightLevel string

// Weight levels for the preference knobs.
const (
	WeightLow    WeightLevel = "low"
	WeightNormal WeightLevel = "normal"
	WeightHigh   WeightLevel = "high"
)

// IsValid reports whether the weight level is one of the known values.
func (w WeightLevel) IsValid() bool {
	switch w {
	case WeightLow, WeightNormal, WeightHigh:
		return true
	}
	return false
}

// UserPreferences is the per-user, mutable input that drives candidate pool
// construction. It is created with defaults at first use and mutated by the
// user at any time; together with interaction history it is the only mutable
// input to the recommendation core.
type UserPreferences struct {
	// Languages and Frameworks describe the user's tech stack.
	Languages  []string `json:"languages,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`

	// Goals are what the user wants out of discovery ("learn", "contribute",
	// "find-tools"). Domains are interest areas ("web-frontend", "data-science").
	Goals   []string `json:"goals,omitempty"`
	Domains []string `json:"domains,omitempty"`

	// ProjectTypes filters by repository kind ("library", "framework", "app").
	ProjectTypes []string `json:"project_types,omitempty"`

	// ExperienceLevel is a free-form band ("beginner", "intermediate", "expert").
	ExperienceLevel string `json:"experience_level,omitempty"`

	// Weighting knobs. PopularityWeight high lifts the popularity cap so that
	// very widely known repositories may be recommended.
	ActivityWeight   WeightLevel `json:"activity_weight,omitempty"`
	PopularityWeight WeightLevel `json:"popularity_weight,omitempty"`
	DocsWeight       WeightLevel `json:"docs_weight,omitempty"`

	OnboardingDone bool      `json:"onboarding_done"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preference set used when a user has no stored
// preferences (PreferenceNotFound is not an error).
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		ActivityWeight:   WeightNormal,
		PopularityWeight: WeightNormal,
		DocsWeight:       WeightNormal,
	}
}

// WantsHighPopularity reports whether the user explicitly asked for
// high-popularity results, which disables the default star cap.
func (p *UserPreferences) WantsHighPopularity() bool {
	return p.PopularityWeight == WeightHigh
}

// Interests returns the deduplicated union of languages, frameworks and
// domains, lowercased, in sorted order. This is the tag universe used for
// cluster detection and pool queries.
func (p *UserPreferences) Interests() []string {
	seen := make(map[string]struct{})
	for _, group := range [][]string{p.Languages, p.Frameworks, p.Domains} {
		for _, v := range group {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Fingerprint returns a stable digest input for the preference set: every
// field that affects pool construction, in canonical order. Two preference
// sets with equal fingerprints build identical pools.
func (p *UserPreferences) Fingerprint() string {
	var b strings.Builder
	writeGroup := func(name string, values []string) {
		sorted := make([]string, len(values))
		copy(sorted, values)
		for i := range sorted {
			sorted[i] = strings.ToLower(strings.TrimSpace(sorted[i]))
		}
		sort.Strings(sorted)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(sorted, ","))
		b.WriteByte(';')
	}
	writeGroup("lang", p.Languages)
	writeGroup("fw", p.Frameworks)
	writeGroup("goal", p.Goals)
	writeGroup("dom", p.Domains)
	writeGroup("type", p.ProjectTypes)
	b.WriteString("exp=")
	b.WriteString(strings.ToLower(p.ExperienceLevel))
	b.WriteString(";act=")
	b.WriteString(string(p.ActivityWeight))
	b.WriteString(";pop=")
	b.WriteString(string(p.PopularityWeight))
	b.WriteString(";docs=")
	b.WriteString(string(p.DocsWeight))
	return b.String()
}
