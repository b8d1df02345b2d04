// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package search

import (
	"math"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"

	"github.com/tomtom215/reposcout/internal/models"
)

func signalsRepo() *models.Repository {
	return &models.Repository{ID: 42, FullName: "grafana/k6", OpenIssues: 8}
}

func TestSignalsCollectsAllSubFetches(t *testing.T) {
	t.Parallel()

	var remote atomic.Int32
	mocked := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(
			contributorsPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				remote.Add(1)
				// One item per page: the rel="last" page index carries the
				// total contributor count.
				w.Header().Set("Link", `<https://api.github.com/repos/grafana/k6/contributors?per_page=1&page=87>; rel="last"`)
				_, _ = w.Write(githubMock.MustMarshal([]*github.Contributor{{Login: github.String("first")}}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			releasesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				remote.Add(1)
				// No Link header: the count falls back to the item total.
				_, _ = w.Write(githubMock.MustMarshal([]*github.RepositoryRelease{
					{ID: github.Int64(1)}, {ID: github.Int64(2)}, {ID: github.Int64(3)},
				}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			commitActivityPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				remote.Add(1)
				_, _ = w.Write(githubMock.MustMarshal([]*github.WeeklyCommitActivity{
					{Total: github.Int(5)}, {Total: github.Int(7)},
				}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			searchIssuesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				remote.Add(1)
				_, _ = w.Write(githubMock.MustMarshal(github.IssuesSearchResult{Total: github.Int(42)}))
			}),
		),
	)
	c := newTestClient(t, mocked, 0)

	sig, err := c.Signals(t.Context(), signalsRepo())
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}
	if sig.Contributors != 87 {
		t.Errorf("Contributors = %d, want 87 (from Link header)", sig.Contributors)
	}
	if sig.Releases != 3 {
		t.Errorf("Releases = %d, want 3 (item-count fallback)", sig.Releases)
	}
	if sig.CommitsLastYear != 12 {
		t.Errorf("CommitsLastYear = %d, want 12", sig.CommitsLastYear)
	}
	if sig.IssueCloseRate == nil {
		t.Fatal("IssueCloseRate = nil, want 42/(42+8)")
	}
	if got := *sig.IssueCloseRate; math.Abs(got-0.84) > 1e-9 {
		t.Errorf("IssueCloseRate = %g, want 0.84", got)
	}

	// Second fetch for the same repository is served from cache.
	if _, err := c.Signals(t.Context(), signalsRepo()); err != nil {
		t.Fatalf("Signals() second call error = %v", err)
	}
	if got := remote.Load(); got != 4 {
		t.Errorf("remote calls = %d, want 4", got)
	}
}

func TestSignalsDegradeOnPartialFailure(t *testing.T) {
	t.Parallel()

	mocked := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(
			contributorsPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				githubMock.WriteError(w, http.StatusInternalServerError, "boom")
			}),
		),
		githubMock.WithRequestMatchHandler(
			releasesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal([]*github.RepositoryRelease{{ID: github.Int64(1)}}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			commitActivityPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal([]*github.WeeklyCommitActivity{{Total: github.Int(9)}}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			searchIssuesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal(github.IssuesSearchResult{Total: github.Int(2)}))
			}),
		),
	)
	c := newTestClient(t, mocked, 0)

	sig, err := c.Signals(t.Context(), signalsRepo())
	if err != nil {
		t.Fatalf("Signals() error = %v, want graceful degradation", err)
	}
	if sig.Contributors != 0 {
		t.Errorf("Contributors = %d, want zero value after failed sub-fetch", sig.Contributors)
	}
	if sig.Releases != 1 || sig.CommitsLastYear != 9 {
		t.Errorf("surviving signals = %d/%d, want 1/9", sig.Releases, sig.CommitsLastYear)
	}
}

func TestSignalsFailWhenAllSubFetchesFail(t *testing.T) {
	t.Parallel()

	fail := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		githubMock.WriteError(w, http.StatusInternalServerError, "boom")
	})
	mocked := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(contributorsPattern, fail),
		githubMock.WithRequestMatchHandler(releasesPattern, fail),
		githubMock.WithRequestMatchHandler(commitActivityPattern, fail),
		githubMock.WithRequestMatchHandler(searchIssuesPattern, fail),
	)
	c := newTestClient(t, mocked, 0)

	if _, err := c.Signals(t.Context(), signalsRepo()); err == nil {
		t.Error("Signals() error = nil, want error when every sub-fetch fails")
	}
}

func TestSignalsCommitStatsPending(t *testing.T) {
	t.Parallel()

	mocked := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(
			contributorsPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal([]*github.Contributor{{Login: github.String("a")}}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			releasesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal([]*github.RepositoryRelease{}))
			}),
		),
		githubMock.WithRequestMatchHandler(
			commitActivityPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				// GitHub answers 202 while statistics are being computed.
				w.WriteHeader(http.StatusAccepted)
			}),
		),
		githubMock.WithRequestMatchHandler(
			searchIssuesPattern,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(githubMock.MustMarshal(github.IssuesSearchResult{Total: github.Int(0)}))
			}),
		),
	)
	c := newTestClient(t, mocked, 0)

	repo := &models.Repository{ID: 1, FullName: "young/repo", OpenIssues: 0}
	sig, err := c.Signals(t.Context(), repo)
	if err != nil {
		t.Fatalf("Signals() error = %v, want pending stats treated as zero", err)
	}
	if sig.CommitsLastYear != 0 {
		t.Errorf("CommitsLastYear = %d, want 0 while stats pend", sig.CommitsLastYear)
	}
	if sig.IssueCloseRate != nil {
		t.Errorf("IssueCloseRate = %v, want nil when the repository never had issues", *sig.IssueCloseRate)
	}
}

func TestSignalsRejectInvalidInput(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, githubMock.NewMockedHTTPClient(), 0)

	if _, err := c.Signals(t.Context(), nil); err == nil {
		t.Error("Signals(nil) error = nil, want error")
	}
	if _, err := c.Signals(t.Context(), &models.Repository{ID: 1, FullName: "nonsense"}); err == nil {
		t.Error("Signals(malformed name) error = nil, want error")
	}
}
