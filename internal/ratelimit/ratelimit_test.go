package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_FirstRequestImmediate(t *testing.T) {
	r := NewHostRateLimiter(time.Hour)

	start := time.Now()
	if err := r.Wait(context.Background(), "raw.githubusercontent.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("first request should not wait")
	}
}

func TestWait_EnforcesDelayPerHost(t *testing.T) {
	r := NewHostRateLimiter(150 * time.Millisecond)
	ctx := context.Background()

	if err := r.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	start := time.Now()
	if err := r.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("second request waited only %v", elapsed)
	}

	// A different host is independent.
	start = time.Now()
	if err := r.Wait(ctx, "b.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("independent host should not wait")
	}
}

func TestWait_CancelledWhileWaiting(t *testing.T) {
	r := NewHostRateLimiter(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := r.Wait(ctx, "x"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := r.Wait(ctx, "x"); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestHostFor(t *testing.T) {
	if got := HostFor("https://raw.githubusercontent.com/org/repo/README.md"); got != "raw.githubusercontent.com" {
		t.Errorf("HostFor = %q", got)
	}
	if got := HostFor("not a url"); got != "not a url" {
		t.Errorf("HostFor fallback = %q", got)
	}
}
