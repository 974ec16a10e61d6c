package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		key      string
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			key:      "gameupc",
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			key:      "gameupc",
			calls:    5,
			wantPass: 2,
		},
		{
			name:     "single call within burst",
			rps:      1,
			burst:    1,
			key:      "bgg",
			calls:    1,
			wantPass: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow(tt.key) {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("got %d passed, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if !rl.Allow("gameupc") {
		t.Fatal("first call for gameupc should pass")
	}
	if rl.Allow("gameupc") {
		t.Fatal("second call for gameupc should be limited")
	}
	// A different vendor key has its own bucket.
	if !rl.Allow("upcitemdb") {
		t.Fatal("first call for upcitemdb should pass")
	}
}

func TestKeyedRateLimiter_WaitCancellation(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	// Drain the burst token.
	if !rl.Allow("bgg") {
		t.Fatal("burst token should be available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "bgg"); err == nil {
		t.Fatal("expected Wait to fail when context expires before a token is available")
	}
}
