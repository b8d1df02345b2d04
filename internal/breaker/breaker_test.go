// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package breaker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// newTestBreaker builds a breaker with a short recovery timeout so state
// transition tests do not stall the suite.
func newTestBreaker(t *testing.T, timeout time.Duration, maxRequests uint32) *Breaker {
	t.Helper()

	b := &Breaker{
		name:   "test-breaker",
		logger: zerolog.Nop(),
	}
	b.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        b.name,
		MaxRequests: maxRequests,
		Interval:    time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})
	return b
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	b := New("test-opens-after-failures", &logger)

	if state := b.State(); state != gobreaker.StateClosed {
		t.Fatalf("expected initial state Closed, got %v", state)
	}

	// Ten straight failures: ReadyToTrip is evaluated after each failure, so
	// the tenth one satisfies the minimum-request and ratio thresholds.
	for i := 0; i < 10; i++ {
		_, _ = b.Execute(func() (interface{}, error) {
			return nil, errors.New("simulated API failure")
		})
	}

	if state := b.State(); state != gobreaker.StateOpen {
		t.Fatalf("expected circuit Open after 10 failures, got %v", state)
	}

	// Subsequent requests are rejected without executing fn.
	executed := false
	_, err := b.Execute(func() (interface{}, error) {
		executed = true
		return "should not run", nil
	})

	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState from open circuit, got %v", err)
	}
	if !Rejected(err) {
		t.Errorf("Rejected(%v) = false, want true", err)
	}
	if executed {
		t.Error("wrapped call executed despite open circuit")
	}
}

func TestBreaker_DoesNotOpenBelowThreshold(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	b := New("test-below-threshold", &logger)

	// 10 calls with 5 failures: 50% is below the 60% trip threshold.
	for i := 0; i < 10; i++ {
		i := i
		_, _ = b.Execute(func() (interface{}, error) {
			if i < 5 {
				return nil, errors.New("simulated API failure")
			}
			return "success", nil
		})
	}

	if state := b.State(); state != gobreaker.StateClosed {
		t.Errorf("expected circuit to remain Closed at 50%% failure rate, got %v", state)
	}
}

func TestBreaker_RequiresMinimumRequests(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	b := New("test-minimum-requests", &logger)

	// 100% failure rate but below the 10-request minimum.
	for i := 0; i < 5; i++ {
		_, _ = b.Execute(func() (interface{}, error) {
			return nil, errors.New("simulated API failure")
		})
	}

	if state := b.State(); state != gobreaker.StateClosed {
		t.Errorf("expected circuit Closed with fewer than 10 requests, got %v", state)
	}
}

func TestBreaker_TransitionsToHalfOpen(t *testing.T) {
	t.Parallel()

	b := newTestBreaker(t, 100*time.Millisecond, 3)

	for i := 0; i < 10; i++ {
		_, _ = b.Execute(func() (interface{}, error) {
			return nil, errors.New("simulated API failure")
		})
	}

	if state := b.State(); state != gobreaker.StateOpen {
		t.Fatalf("expected circuit Open, got %v", state)
	}

	// Wait past the recovery timeout, then probe.
	time.Sleep(150 * time.Millisecond)

	_, _ = b.Execute(func() (interface{}, error) {
		return "probe", nil
	})

	if state := b.State(); state == gobreaker.StateOpen {
		t.Error("expected circuit to leave Open after recovery timeout, still Open")
	}
}

func TestBreaker_ClosesAfterSuccessInHalfOpen(t *testing.T) {
	t.Parallel()

	// MaxRequests=1: a single successful probe closes the circuit.
	b := newTestBreaker(t, 100*time.Millisecond, 1)

	for i := 0; i < 10; i++ {
		_, _ = b.Execute(func() (interface{}, error) {
			return nil, errors.New("simulated API failure")
		})
	}

	time.Sleep(150 * time.Millisecond)

	result, err := b.Execute(func() (interface{}, error) {
		return "success", nil
	})
	if err != nil {
		t.Fatalf("expected successful probe in half-open, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("probe result = %v, want %q", result, "success")
	}

	if state := b.State(); state != gobreaker.StateClosed {
		t.Errorf("expected circuit Closed after successful half-open probe, got %v", state)
	}
}

func TestBreaker_PassesThroughResults(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	b := New("test-pass-through", &logger)

	want := &struct{ N int }{N: 42}
	got, err := b.Execute(func() (interface{}, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != want {
		t.Errorf("Execute() result = %v, want %v", got, want)
	}

	sentinel := errors.New("upstream exploded")
	_, err = b.Execute(func() (interface{}, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Execute() error = %v, want %v", err, sentinel)
	}
	if Rejected(err) {
		t.Errorf("Rejected(%v) = true for a plain call failure", err)
	}
}

func TestCastResult(t *testing.T) {
	t.Parallel()

	type payload struct {
		Value string
	}

	t.Run("valid cast", func(t *testing.T) {
		t.Parallel()

		in := &payload{Value: "hello"}
		out, err := CastResult[payload](in, nil)
		if err != nil {
			t.Fatalf("CastResult() error = %v", err)
		}
		if out.Value != "hello" {
			t.Errorf("CastResult().Value = %q, want %q", out.Value, "hello")
		}
	})

	t.Run("error passthrough", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("call failed")
		_, err := CastResult[payload](nil, sentinel)
		if !errors.Is(err, sentinel) {
			t.Errorf("CastResult() error = %v, want %v", err, sentinel)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		_, err := CastResult[payload]("not a payload pointer", nil)
		if err == nil {
			t.Fatal("CastResult() with mismatched type returned nil error")
		}
	})
}

func TestRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"open state", gobreaker.ErrOpenState, true},
		{"too many requests", gobreaker.ErrTooManyRequests, true},
		{"wrapped open state", fmt.Errorf("call: %w", gobreaker.ErrOpenState), true},
		{"plain failure", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Rejected(tt.err); got != tt.want {
				t.Errorf("Rejected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStateHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state       gobreaker.State
		expectedStr string
		expectedNum float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expectedStr, func(t *testing.T) {
			t.Parallel()

			if str := stateToString(tt.state); str != tt.expectedStr {
				t.Errorf("stateToString(%v) = %s, want %s", tt.state, str, tt.expectedStr)
			}
			if num := stateToFloat(tt.state); num != tt.expectedNum {
				t.Errorf("stateToFloat(%v) = %f, want %f", tt.state, num, tt.expectedNum)
			}
		})
	}
}

func BenchmarkBreaker_ClosedState(b *testing.B) {
	logger := zerolog.Nop()
	br := New("bench-closed", &logger)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = br.Execute(func() (interface{}, error) {
			return "success", nil
		})
	}
}

func BenchmarkBreaker_OpenState(b *testing.B) {
	logger := zerolog.Nop()
	br := New("bench-open", &logger)

	for i := 0; i < 10; i++ {
		_, _ = br.Execute(func() (interface{}, error) {
			return nil, errors.New("failure")
		})
	}
	if br.State() != gobreaker.StateOpen {
		b.Fatal("circuit should be open for benchmark")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = br.Execute(func() (interface{}, error) {
			return "should not execute", nil
		})
	}
}
