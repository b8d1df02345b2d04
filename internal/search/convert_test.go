// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
)

func TestFromGitHubFullSnapshot(t *testing.T) {
	t.Parallel()

	created := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	pushed := time.Date(2026, 8, 20, 15, 4, 5, 0, time.UTC)

	src := &github.Repository{
		ID:              github.Int64(41986369),
		FullName:        github.String("prometheus/client_golang"),
		Description:     github.String("Prometheus instrumentation library for Go applications"),
		Language:        github.String("Go"),
		Topics:          []string{"prometheus", "metrics"},
		StargazersCount: github.Int(5600),
		ForksCount:      github.Int(1200),
		OpenIssuesCount: github.Int(140),
		CreatedAt:       &github.Timestamp{Time: created},
		PushedAt:        &github.Timestamp{Time: pushed},
		License:         &github.License{SPDXID: github.String("Apache-2.0"), Name: github.String("Apache License 2.0")},
		Owner:           &github.User{Login: github.String("prometheus"), AvatarURL: github.String("https://avatars.example/u/3380462")},
		HTMLURL:         github.String("https://github.com/prometheus/client_golang"),
		Archived:        github.Bool(false),
	}

	got := fromGitHub(src)

	if got.ID != 41986369 {
		t.Errorf("ID = %d, want 41986369", got.ID)
	}
	if got.FullName != "prometheus/client_golang" {
		t.Errorf("FullName = %q", got.FullName)
	}
	if got.Language != "Go" {
		t.Errorf("Language = %q, want Go", got.Language)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "prometheus" {
		t.Errorf("Topics = %v", got.Topics)
	}
	if got.Stars != 5600 || got.Forks != 1200 || got.OpenIssues != 140 {
		t.Errorf("counts = %d/%d/%d, want 5600/1200/140", got.Stars, got.Forks, got.OpenIssues)
	}
	if !got.CreatedAt.Equal(created) || !got.PushedAt.Equal(pushed) {
		t.Errorf("timestamps = %v/%v", got.CreatedAt, got.PushedAt)
	}
	if got.License != "Apache-2.0" {
		t.Errorf("License = %q, want SPDX identifier", got.License)
	}
	if got.OwnerLogin != "prometheus" || got.OwnerAvatarURL == "" {
		t.Errorf("owner = %q/%q", got.OwnerLogin, got.OwnerAvatarURL)
	}
	if got.Archived {
		t.Error("Archived = true, want false")
	}
	if !got.HasReadme {
		t.Error("HasReadme = false, want optimistic default true")
	}
}

func TestFromGitHubLicenseFallsBackToName(t *testing.T) {
	t.Parallel()

	src := &github.Repository{
		ID:      github.Int64(1),
		License: &github.License{Name: github.String("Custom License")},
	}
	if got := fromGitHub(src); got.License != "Custom License" {
		t.Errorf("License = %q, want name fallback", got.License)
	}
}

func TestFromGitHubEmptyRepository(t *testing.T) {
	t.Parallel()

	got := fromGitHub(&github.Repository{})
	if got.ID != 0 || got.FullName != "" || got.License != "" {
		t.Errorf("zero repository mapped to %+v", got)
	}
	if !got.CreatedAt.IsZero() || !got.PushedAt.IsZero() {
		t.Errorf("timestamps = %v/%v, want zero", got.CreatedAt, got.PushedAt)
	}
	if !got.HasReadme {
		t.Error("HasReadme = false, want optimistic default true")
	}
}

func TestFromGitHubListDropsUnidentified(t *testing.T) {
	t.Parallel()

	items := []*github.Repository{
		nil,
		{FullName: github.String("no/id")},
		{ID: github.Int64(7), FullName: github.String("kept/repo")},
	}

	got := fromGitHubList(items)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != 7 {
		t.Errorf("ID = %d, want 7", got[0].ID)
	}
}

func TestSplitFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantName  string
		wantOK    bool
	}{
		{name: "regular full name", input: "grafana/k6", wantOwner: "grafana", wantName: "k6", wantOK: true},
		{name: "missing separator", input: "grafana"},
		{name: "empty owner", input: "/k6"},
		{name: "empty name", input: "grafana/"},
		{name: "empty string", input: ""},
		{name: "splits at the first separator", input: "a/b/c", wantOwner: "a", wantName: "b/c", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			owner, name, ok := splitFullName(tt.input)
			if owner != tt.wantOwner || name != tt.wantName || ok != tt.wantOK {
				t.Errorf("splitFullName(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.input, owner, name, ok, tt.wantOwner, tt.wantName, tt.wantOK)
			}
		})
	}
}
