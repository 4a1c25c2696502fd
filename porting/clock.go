package porting

import (
	"context"
	"time"
)

// Clock provides the engine's monotonic timers: elapsed time since an
// arbitrary epoch, non-decreasing by construction. The engine uses these
// for timing instrumentation only, never for correctness-affecting logic.
type Clock struct {
	start time.Time
}

func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

// Millis returns whole milliseconds elapsed since the clock's epoch.
func (c *Clock) Millis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// Micros returns whole microseconds elapsed since the clock's epoch.
func (c *Clock) Micros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

// Sleep suspends the calling goroutine for at least ms milliseconds,
// yielding the processor back to the scheduler. A non-positive duration is
// a no-op and always succeeds; the engine relies on that lenient behavior,
// so it is preserved here. Cancellation of ctx ends the wait early but is
// still reported as success, matching the hook contract that the delay
// primitive cannot fail.
func (c *Clock) Sleep(ctx context.Context, ms int32) int32 {
	if ms <= 0 {
		return StatusOK
	}

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return StatusOK
}
