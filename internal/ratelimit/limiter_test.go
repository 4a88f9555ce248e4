package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	l := New(100)
	if l == nil {
		t.Error("expected non-nil limiter")
	}
}

func TestWait_NilLimiter(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter must not wait or fail, got %v", err)
	}
}

func TestWait_ZeroRPS(t *testing.T) {
	l := New(0)

	start := time.Now()
	err := l.Wait(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if elapsed > 10*time.Millisecond {
		t.Errorf("zero RPS should not block, took %v", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(1)

	// Exhaust the burst.
	_ = l.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWait_Paces(t *testing.T) {
	l := New(10)

	start := time.Now()
	for i := 0; i < 15; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// 10 burst instantly, 5 more need ~500ms.
	if elapsed < 400*time.Millisecond {
		t.Errorf("rate limiting doesn't appear to be working, elapsed: %v", elapsed)
	}
}

func TestSetRate_Unlimited(t *testing.T) {
	l := New(1)
	l.SetRate(0)

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited rate should be fast, took %v", elapsed)
	}
}
