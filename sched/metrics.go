package sched

import (
	"sync"
	"time"
)

// Metrics tracks scheduler queue-wait latency using the same P-Square
// streaming-quantile estimator the teacher event loop uses for task
// latency, since both are "how long did a unit of work sit in a queue
// before a loop dequeued it" problems. All methods are safe for
// concurrent use from every core's RunCore goroutine.
type Metrics struct {
	mu      sync.Mutex
	psquare *pSquareMultiQuantile
}

// NewMetrics constructs a Metrics tracking p50/p90/p99 queue-wait
// latency.
func NewMetrics() *Metrics {
	return &Metrics{psquare: newPSquareMultiQuantile(0.50, 0.90, 0.99)}
}

// RecordWait records how long an Event waited in a Queue before being
// dequeued by WaitForTask.
func (m *Metrics) RecordWait(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.psquare.Update(float64(d))
}

// Snapshot is a point-in-time read of the tracked quantiles.
type Snapshot struct {
	Count int
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

// Snapshot returns the current latency distribution.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Count: m.psquare.Count(),
		P50:   time.Duration(m.psquare.Quantile(0)),
		P90:   time.Duration(m.psquare.Quantile(1)),
		P99:   time.Duration(m.psquare.Quantile(2)),
		Max:   time.Duration(m.psquare.Max()),
		Mean:  time.Duration(m.psquare.Mean()),
	}
}
