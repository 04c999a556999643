package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameHost_EnforcesMinDelay(t *testing.T) {
	limiter := NewHostLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "remotive.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "remotive.com"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentHosts_NoCrossBlocking(t *testing.T) {
	limiter := NewHostLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "remotive.com"); err != nil {
		t.Fatalf("remotive wait: %v", err)
	}

	// Immediately call for another host, should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "www.arbeitnow.com"); err != nil {
		t.Fatalf("arbeitnow wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected arbeitnow wait to be near-instant, got %v", elapsed)
	}
}

func TestWaitURL_KeysByHost(t *testing.T) {
	limiter := NewHostLimiter(100 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "https://remotive.com/api/remote-jobs"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.WaitURL(ctx, "https://remotive.com/other"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected same-host URLs to share a limiter, waited %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	limiter := NewHostLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "remotive.com"); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected no waiting with zero delay, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewHostLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the bucket.
	if err := limiter.Wait(ctx, "remotive.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	if err := limiter.Wait(ctx, "remotive.com"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}
