package porting

import (
	"context"
	"testing"
	"time"
)

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()

	prev := c.Micros()
	for i := 0; i < 100; i++ {
		cur := c.Micros()
		if cur < prev {
			t.Fatalf("Micros went backwards: %d after %d", cur, prev)
		}
		prev = cur
	}

	ms := c.Millis()
	us := c.Micros()
	if us < ms*1000 {
		t.Errorf("Micros %d inconsistent with Millis %d", us, ms)
	}
}

func TestClock_SleepNonPositive(t *testing.T) {
	c := NewClock()

	for _, ms := range []int32{0, -1, -10000} {
		start := time.Now()
		if got := c.Sleep(context.Background(), ms); got != StatusOK {
			t.Errorf("Sleep(%d) = %d, want %d", ms, got, StatusOK)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("Sleep(%d) blocked for %v, want immediate return", ms, elapsed)
		}
	}
}

func TestClock_SleepWaits(t *testing.T) {
	c := NewClock()

	start := time.Now()
	if got := c.Sleep(context.Background(), 20); got != StatusOK {
		t.Fatalf("Sleep = %d, want %d", got, StatusOK)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep(20) returned after %v, want at least 20ms", elapsed)
	}
}

func TestClock_SleepCanceled(t *testing.T) {
	c := NewClock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if got := c.Sleep(ctx, 10000); got != StatusOK {
		t.Fatalf("Sleep on canceled context = %d, want %d", got, StatusOK)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep ignored cancellation, blocked for %v", elapsed)
	}
}
