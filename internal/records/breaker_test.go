package records

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker(t *testing.T) {
	t.Run("连续失败后熔断", func(t *testing.T) {
		now := time.Now()
		b := NewBreaker(3, time.Minute)
		b.now = func() time.Time { return now }

		fail := errors.New("db down")
		for i := 0; i < 3; i++ {
			_ = b.Call(func() error { return fail })
		}
		if b.State() != BreakerOpen {
			t.Fatalf("expected open after 3 failures, got %v", b.State())
		}

		called := false
		if err := b.Call(func() error { called = true; return nil }); err != ErrBreakerOpen {
			t.Fatalf("expected ErrBreakerOpen, got %v", err)
		}
		if called {
			t.Fatalf("fn must not run while open")
		}

		// 冷却结束后试探成功，恢复正常
		now = now.Add(2 * time.Minute)
		if err := b.Call(func() error { return nil }); err != nil {
			t.Fatalf("probe should pass: %v", err)
		}
		if b.State() != BreakerClosed {
			t.Fatalf("expected closed after successful probe, got %v", b.State())
		}
		if b.Stats().Trips != 1 {
			t.Fatalf("trips = %d, want 1", b.Stats().Trips)
		}
	})

	t.Run("试探失败重新熔断", func(t *testing.T) {
		now := time.Now()
		b := NewBreaker(1, time.Second)
		b.now = func() time.Time { return now }

		_ = b.Call(func() error { return errors.New("x") })
		now = now.Add(2 * time.Second)
		_ = b.Call(func() error { return errors.New("still down") })
		if b.State() != BreakerOpen {
			t.Fatalf("expected open after failed probe, got %v", b.State())
		}
	})

	t.Run("成功重置连续失败计数", func(t *testing.T) {
		b := NewBreaker(2, time.Minute)
		_ = b.Call(func() error { return errors.New("x") })
		_ = b.Call(func() error { return nil })
		_ = b.Call(func() error { return errors.New("x") })
		if b.State() != BreakerClosed {
			t.Fatalf("non-consecutive failures must not trip, got %v", b.State())
		}
	})
}
