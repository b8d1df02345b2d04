// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package authz

import (
	"testing"
	"time"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEmbeddedPolicy(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	tests := []struct {
		name    string
		subject string
		object  string
		action  string
		want    bool
	}{
		{"viewer reads recommendations", "viewer", "/api/v1/recommendations", "read", true},
		{"viewer reads repo health", "viewer", "/api/v1/repos/123/health", "read", true},
		{"viewer posts swipes", "viewer", "/api/v1/swipes", "write", true},
		{"viewer posts compare", "viewer", "/api/v1/compare", "write", true},
		{"viewer updates preferences", "viewer", "/api/v1/preferences", "write", true},
		{"viewer refreshes pool", "viewer", "/api/v1/pool/refresh", "write", true},
		{"viewer clears pool", "viewer", "/api/v1/pool", "delete", true},
		{"viewer denied admin routes", "viewer", "/api/v1/admin/cluster/rebuild", "write", false},
		{"admin rebuilds cluster", "admin", "/api/v1/admin/cluster/rebuild", "write", true},
		{"admin reads cluster status", "admin", "/api/v1/admin/cluster/status", "read", true},
		{"admin inherits viewer routes", "admin", "/api/v1/recommendations", "read", true},
		{"unknown role denied", "ghost", "/api/v1/recommendations", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Enforce(tt.subject, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v",
					tt.subject, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforceForUser(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	// Role claim carries the permission
	allowed, err := e.EnforceForUser("alice", "admin", "/api/v1/admin/cluster/status", "read")
	if err != nil {
		t.Fatalf("EnforceForUser: %v", err)
	}
	if !allowed {
		t.Error("admin role should allow admin routes")
	}

	// No role claim falls back to the default role
	allowed, err = e.EnforceForUser("bob", "", "/api/v1/recommendations", "read")
	if err != nil {
		t.Fatalf("EnforceForUser: %v", err)
	}
	if !allowed {
		t.Error("default viewer role should allow reading recommendations")
	}

	allowed, err = e.EnforceForUser("bob", "", "/api/v1/admin/cluster/rebuild", "write")
	if err != nil {
		t.Fatalf("EnforceForUser: %v", err)
	}
	if allowed {
		t.Error("default viewer role must not reach admin routes")
	}
}

func TestRoleAssignment(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)

	added, err := e.AddRoleForUser("carol", "admin")
	if err != nil {
		t.Fatalf("AddRoleForUser: %v", err)
	}
	if !added {
		t.Fatal("expected role to be added")
	}

	allowed, err := e.Enforce("carol", "/api/v1/admin/cluster/status", "read")
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if !allowed {
		t.Error("carol should have admin access after role grant")
	}

	removed, err := e.DeleteRoleForUser("carol", "admin")
	if err != nil {
		t.Fatalf("DeleteRoleForUser: %v", err)
	}
	if !removed {
		t.Fatal("expected role to be removed")
	}

	allowed, err = e.Enforce("carol", "/api/v1/admin/cluster/status", "read")
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if allowed {
		t.Error("carol should lose admin access after role revocation")
	}
}

func TestDecisionCache(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnforcerConfig()
	cfg.CacheEnabled = true
	cfg.CacheTTL = time.Minute
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(e.Close)

	// Same decision twice; second hit served from cache
	for i := 0; i < 2; i++ {
		allowed, err := e.Enforce("viewer", "/api/v1/recommendations", "read")
		if err != nil {
			t.Fatalf("Enforce: %v", err)
		}
		if !allowed {
			t.Fatal("expected allow")
		}
	}

	if _, ok := e.cache.get("viewer", "/api/v1/recommendations", "read"); !ok {
		t.Error("decision not cached")
	}
}

func TestLoadPolicyWithoutAdapter(t *testing.T) {
	t.Parallel()

	e := newTestEnforcer(t)
	if err := e.LoadPolicy(); err != ErrNoAdapter {
		t.Errorf("LoadPolicy = %v, want ErrNoAdapter", err)
	}
}
