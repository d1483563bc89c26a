// ABOUTME: Tests for the retry backoff helper
// ABOUTME: Checks growth, jitter bounds, and the 30 second cap
package util

import (
	"testing"
	"time"
)

func TestCalculateBackoffBounds(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		attempt  int
		min, max time.Duration
	}{
		{"attempt zero", time.Second, 0, 0, 0},
		{"negative attempt", time.Second, -3, 0, 0},
		{"first retry", 100 * time.Millisecond, 1, 150 * time.Millisecond, 250 * time.Millisecond},
		{"second retry", 100 * time.Millisecond, 2, 300 * time.Millisecond, 500 * time.Millisecond},
		{"capped at 30s", time.Second, 10, 22500 * time.Millisecond, 37500 * time.Millisecond},
		{"huge attempt stays capped", time.Millisecond, 500, 0, 37500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBackoff(tt.base, tt.attempt)
			if got < tt.min || got > tt.max {
				t.Errorf("CalculateBackoff(%v, %d) = %v, want within [%v, %v]",
					tt.base, tt.attempt, got, tt.min, tt.max)
			}
			if got < 0 {
				t.Errorf("CalculateBackoff(%v, %d) = %v, negative", tt.base, tt.attempt, got)
			}
		})
	}
}

func TestCalculateBackoffJitterVaries(t *testing.T) {
	first := CalculateBackoff(time.Second, 2)
	for i := 0; i < 100; i++ {
		if CalculateBackoff(time.Second, 2) != first {
			return
		}
	}
	t.Error("100 samples produced the same backoff, jitter looks absent")
}
