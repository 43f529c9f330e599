package resolver

import (
	"sync/atomic"
	"time"
)

// Controller exposes cooperative stop signals to a resolution in flight. The
// resolver polls it between queries and between candidate fetches; it never
// interrupts a call already underway.
type Controller interface {
	Cancelled() bool
	Elapsed() time.Duration
}

// Clock is the default Controller: wall clock since construction, never
// cancelled. The per-track time budget is still enforced against it.
type Clock struct {
	start time.Time
}

func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

func (c *Clock) Cancelled() bool { return false }

func (c *Clock) Elapsed() time.Duration { return time.Since(c.start) }

// CancelFlag is a Controller whose owner can trip it from another goroutine.
// Safe for concurrent use.
type CancelFlag struct {
	start     time.Time
	cancelled atomic.Bool
}

func NewCancelFlag() *CancelFlag {
	return &CancelFlag{start: time.Now()}
}

// Cancel requests a cooperative stop. Idempotent.
func (c *CancelFlag) Cancel() {
	c.cancelled.Store(true)
}

func (c *CancelFlag) Cancelled() bool { return c.cancelled.Load() }

func (c *CancelFlag) Elapsed() time.Duration { return time.Since(c.start) }
