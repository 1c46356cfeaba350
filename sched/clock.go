package sched

import (
	"runtime"
	"time"
)

// Clock models the ARM generic timer pair (CNTPCT_EL0 tick counter,
// CNTFRQ_EL0 frequency) the real kernel reads via MRS. On this host
// there is no architectural tick counter to read, so Clock is backed
// by the Go monotonic clock the same way Performance.Now() in a JS
// event loop is backed by time.Since of a fixed origin: a stable
// origin plus elapsed monotonic time, scaled to a synthetic tick
// frequency so callers that care about "ticks" (the scheduler's
// timer bookkeeping, §4.3) see plausible AArch64-shaped numbers.
type Clock struct {
	origin time.Time
	freq   uint64 // ticks per second
}

// NewClock returns a Clock with the given synthetic tick frequency.
// Real Raspberry Pi 3/4 boards report 19.2MHz or 54MHz depending on
// firmware; 19_200_000 is used as the default via DefaultClock.
func NewClock(freqHz uint64) *Clock {
	return &Clock{origin: time.Now(), freq: freqHz}
}

// DefaultClock is a Clock at the common Raspberry Pi CNTFRQ_EL0 value.
func DefaultClock() *Clock { return NewClock(19_200_000) }

// Ticks returns the current tick count, the Go equivalent of reading
// CNTPCT_EL0.
func (c *Clock) Ticks() uint64 {
	elapsed := time.Since(c.origin)
	return uint64(elapsed.Seconds() * float64(c.freq))
}

// Freq returns the synthetic tick frequency, the equivalent of
// reading CNTFRQ_EL0.
func (c *Clock) Freq() uint64 { return c.freq }

// Now returns elapsed time since the clock's origin.
func (c *Clock) Now() time.Duration { return time.Since(c.origin) }

// SpinSleepUntil busy-waits (yielding the goroutine scheduler, the Go
// stand-in for the AArch64 "yield" hint instruction used by the
// original spin_sleep_until) until Now() reaches d.
func (c *Clock) SpinSleepUntil(d time.Duration) {
	for c.Now() < d {
		runtime.Gosched()
	}
}

// SpinSleep busy-waits for the given duration from the moment of the call.
func (c *Clock) SpinSleep(d time.Duration) {
	c.SpinSleepUntil(c.Now() + d)
}
