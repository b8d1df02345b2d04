// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/auth"
	"github.com/tomtom215/reposcout/internal/config"
	"github.com/tomtom215/reposcout/internal/ingest"
	"github.com/tomtom215/reposcout/internal/models"
	"github.com/tomtom215/reposcout/internal/preferences"
	"github.com/tomtom215/reposcout/internal/recommend"
	"github.com/tomtom215/reposcout/internal/recommend/cluster"
	"github.com/tomtom215/reposcout/internal/recommend/compare"
)

type fakeRecommend struct {
	set        *recommend.Set
	report     *recommend.HealthReport
	result     *compare.Result
	err        error
	refreshErr error
	cleared    []string
}

func (f *fakeRecommend) GetRecommendations(_ context.Context, _ string, _ int) (*recommend.Set, error) {
	return f.set, f.err
}

func (f *fakeRecommend) GetHealthReport(_ context.Context, _ int64) (*recommend.HealthReport, error) {
	return f.report, f.err
}

func (f *fakeRecommend) Compare(_ context.Context, _ []int64) (*compare.Result, error) {
	return f.result, f.err
}

func (f *fakeRecommend) RefreshPool(_ context.Context, _ string) error {
	return f.refreshErr
}

func (f *fakeRecommend) ClearPool(userID string) {
	f.cleared = append(f.cleared, userID)
}

type fakePrefs struct {
	stored map[string]models.UserPreferences
	getErr error
	setErr error
}

func (f *fakePrefs) Get(_ context.Context, userID string) (models.UserPreferences, error) {
	if f.getErr != nil {
		return models.UserPreferences{}, f.getErr
	}
	prefs, ok := f.stored[userID]
	if !ok {
		return models.UserPreferences{}, preferences.ErrNotFound
	}
	return prefs, nil
}

func (f *fakePrefs) Set(_ context.Context, userID string, prefs models.UserPreferences) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.stored == nil {
		f.stored = make(map[string]models.UserPreferences)
	}
	f.stored[userID] = prefs
	return nil
}

type fakePublisher struct {
	events []*ingest.SwipeEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, event *ingest.SwipeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeClusters struct {
	status     map[string]cluster.ClusterStatus
	rebuildErr error
	rebuilds   int
}

func (f *fakeClusters) Status() map[string]cluster.ClusterStatus {
	return f.status
}

func (f *fakeClusters) RebuildAll(_ context.Context) error {
	f.rebuilds++
	return f.rebuildErr
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Security: config.SecurityConfig{
			AuthMode:       "none",
			JWTSecret:      "test-secret-for-handler-tests",
			SessionTimeout: time.Hour,
		},
	}
}

func newTestHandler(t *testing.T, deps Dependencies) *Handler {
	t.Helper()
	if deps.Recommend == nil {
		deps.Recommend = &fakeRecommend{}
	}
	if deps.Preferences == nil {
		deps.Preferences = &fakePrefs{}
	}
	h, err := NewHandler(testConfig(), deps)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &auth.Claims{UserID: "user-1", Role: "viewer"}
	return req.WithContext(context.WithValue(req.Context(), auth.ClaimsContextKey, claims))
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		engine     *fakeRecommend
		wantStatus int
	}{
		{
			name:   "default count",
			target: "/api/v1/recommendations",
			engine: &fakeRecommend{set: &recommend.Set{
				Items:       []recommend.Item{{Tier: recommend.TierPool, Score: 0.9}},
				GeneratedAt: time.Now(),
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "explicit count",
			target:     "/api/v1/recommendations?count=5",
			engine:     &fakeRecommend{set: &recommend.Set{}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid count",
			target:     "/api/v1/recommendations?count=zero",
			engine:     &fakeRecommend{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative count",
			target:     "/api/v1/recommendations?count=-3",
			engine:     &fakeRecommend{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "remote unavailable",
			target:     "/api/v1/recommendations",
			engine:     &fakeRecommend{err: recommend.ErrRemoteUnavailable},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(t, Dependencies{Recommend: tt.engine})
			rec := httptest.NewRecorder()
			h.Recommendations(rec, authedRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			resp := decodeEnvelope(t, rec)
			if tt.wantStatus == http.StatusOK && resp.Status != "success" {
				t.Errorf("envelope status = %q, want success", resp.Status)
			}
			if tt.wantStatus != http.StatusOK && resp.Error == nil {
				t.Error("error envelope missing")
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		engine     *fakeRecommend
		wantStatus int
		wantCode   string
	}{
		{
			name:       "two repositories",
			body:       `{"repo_ids":[1,2]}`,
			engine:     &fakeRecommend{result: &compare.Result{}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "one repository rejected",
			body:       `{"repo_ids":[1]}`,
			engine:     &fakeRecommend{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidationFailed,
		},
		{
			name:       "six repositories rejected",
			body:       `{"repo_ids":[1,2,3,4,5,6]}`,
			engine:     &fakeRecommend{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidationFailed,
		},
		{
			name:       "malformed body",
			body:       `{"repo_ids":`,
			engine:     &fakeRecommend{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "unresolvable repositories",
			body:       `{"repo_ids":[1,2]}`,
			engine:     &fakeRecommend{err: recommend.ErrInsufficientInput},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInsufficientInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(t, Dependencies{Recommend: tt.engine})
			rec := httptest.NewRecorder()
			h.Compare(rec, authedRequest(http.MethodPost, "/api/v1/compare", []byte(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				resp := decodeEnvelope(t, rec)
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestSwipe(t *testing.T) {
	t.Parallel()

	validBody := func() []byte {
		data, _ := json.Marshal(swipeRequest{
			Repository: models.Repository{ID: 42, FullName: "octo/cat", Stars: 10},
			Action:     "like",
			Source:     "feed",
		})
		return data
	}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{}
		h := newTestHandler(t, Dependencies{Publisher: pub})
		rec := httptest.NewRecorder()
		h.Swipe(rec, authedRequest(http.MethodPost, "/api/v1/swipes", validBody()))

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		if len(pub.events) != 1 {
			t.Fatalf("published %d events, want 1", len(pub.events))
		}
		event := pub.events[0]
		if event.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", event.UserID)
		}
		if event.Action != models.ActionLike {
			t.Errorf("Action = %q, want like", event.Action)
		}
		if event.EventID == "" {
			t.Error("EventID not assigned")
		}
	})

	t.Run("invalid action", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{}
		h := newTestHandler(t, Dependencies{Publisher: pub})
		body := []byte(`{"repository":{"id":42,"full_name":"octo/cat"},"action":"explode"}`)
		rec := httptest.NewRecorder()
		h.Swipe(rec, authedRequest(http.MethodPost, "/api/v1/swipes", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if len(pub.events) != 0 {
			t.Error("invalid swipe must not publish")
		}
	})

	t.Run("ingest disabled", func(t *testing.T) {
		t.Parallel()

		h := newTestHandler(t, Dependencies{})
		rec := httptest.NewRecorder()
		h.Swipe(rec, authedRequest(http.MethodPost, "/api/v1/swipes", validBody()))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{err: errors.New("stream down")}
		h := newTestHandler(t, Dependencies{Publisher: pub})
		rec := httptest.NewRecorder()
		h.Swipe(rec, authedRequest(http.MethodPost, "/api/v1/swipes", validBody()))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestGetPreferencesDefaults(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Dependencies{Preferences: &fakePrefs{}})
	rec := httptest.NewRecorder()
	h.GetPreferences(rec, authedRequest(http.MethodGet, "/api/v1/preferences", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data models.UserPreferences `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ActivityWeight != models.WeightNormal {
		t.Errorf("ActivityWeight = %q, want normal", resp.Data.ActivityWeight)
	}
	if resp.Data.OnboardingDone {
		t.Error("defaults must report onboarding not done")
	}
}

func TestPutPreferences(t *testing.T) {
	t.Parallel()

	t.Run("stores and stamps update time", func(t *testing.T) {
		t.Parallel()

		store := &fakePrefs{}
		h := newTestHandler(t, Dependencies{Preferences: store})
		body := []byte(`{"languages":["go"],"popularity_weight":"high","onboarding_done":true}`)
		rec := httptest.NewRecorder()
		h.PutPreferences(rec, authedRequest(http.MethodPut, "/api/v1/preferences", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		saved, ok := store.stored["user-1"]
		if !ok {
			t.Fatal("preferences not stored")
		}
		if saved.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not stamped")
		}
		if !saved.WantsHighPopularity() {
			t.Error("popularity weight not persisted")
		}
	})

	t.Run("invalid weight rejected", func(t *testing.T) {
		t.Parallel()

		store := &fakePrefs{}
		h := newTestHandler(t, Dependencies{Preferences: store})
		body := []byte(`{"docs_weight":"extreme"}`)
		rec := httptest.NewRecorder()
		h.PutPreferences(rec, authedRequest(http.MethodPut, "/api/v1/preferences", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if len(store.stored) != 0 {
			t.Error("invalid preferences must not be stored")
		}
	})
}

func TestPoolEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("refresh", func(t *testing.T) {
		t.Parallel()

		h := newTestHandler(t, Dependencies{Recommend: &fakeRecommend{}})
		rec := httptest.NewRecorder()
		h.RefreshPool(rec, authedRequest(http.MethodPost, "/api/v1/pool/refresh", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("refresh remote down", func(t *testing.T) {
		t.Parallel()

		h := newTestHandler(t, Dependencies{
			Recommend: &fakeRecommend{refreshErr: recommend.ErrRemoteUnavailable},
		})
		rec := httptest.NewRecorder()
		h.RefreshPool(rec, authedRequest(http.MethodPost, "/api/v1/pool/refresh", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		engine := &fakeRecommend{}
		h := newTestHandler(t, Dependencies{Recommend: engine})
		rec := httptest.NewRecorder()
		h.ClearPool(rec, authedRequest(http.MethodDelete, "/api/v1/pool", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(engine.cleared) != 1 || engine.cleared[0] != "user-1" {
			t.Errorf("cleared = %v, want [user-1]", engine.cleared)
		}
	})
}

func TestClusterAdminEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		clusters := &fakeClusters{status: map[string]cluster.ClusterStatus{
			"cli-tools": {Size: 40},
		}}
		h := newTestHandler(t, Dependencies{Clusters: clusters})
		rec := httptest.NewRecorder()
		h.ClusterStatus(rec, authedRequest(http.MethodGet, "/api/v1/admin/cluster/status", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("rebuild", func(t *testing.T) {
		t.Parallel()

		clusters := &fakeClusters{status: map[string]cluster.ClusterStatus{}}
		h := newTestHandler(t, Dependencies{Clusters: clusters})
		rec := httptest.NewRecorder()
		h.ClusterRebuild(rec, authedRequest(http.MethodPost, "/api/v1/admin/cluster/rebuild", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if clusters.rebuilds != 1 {
			t.Errorf("rebuilds = %d, want 1", clusters.rebuilds)
		}
	})

	t.Run("rebuild partial failure", func(t *testing.T) {
		t.Parallel()

		clusters := &fakeClusters{rebuildErr: errors.New("cluster cli-tools: rate limited")}
		h := newTestHandler(t, Dependencies{Clusters: clusters})
		rec := httptest.NewRecorder()
		h.ClusterRebuild(rec, authedRequest(http.MethodPost, "/api/v1/admin/cluster/rebuild", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		h := newTestHandler(t, Dependencies{})
		rec := httptest.NewRecorder()
		h.ClusterStatus(rec, authedRequest(http.MethodGet, "/api/v1/admin/cluster/status", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Dependencies{})

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}

	// No interaction store wired: ready must fail, health degrades
	rec = httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
