package sched

import (
	"time"

	"github.com/joeycumines/go-kernelcore/ksync"
)

// Queue is a FIFO of Events guarded by an interrupt-masking spinlock,
// grounded directly on the scheduler's pair of priority queues: each
// is "an interrupt-masking spinlock around a FIFO deque".
type Queue struct {
	lock *ksync.InterruptSpinLock[[]Event]
}

// NewQueue constructs an empty Queue. ctrl disables/restores the
// owning core's interrupts around every push/pop; pass
// ksync.NoopInterruptController in tests run outside a scheduled core.
func NewQueue(ctrl ksync.InterruptController) *Queue {
	return &Queue{lock: ksync.NewInterruptSpinLock[[]Event](nil, ctrl)}
}

// Push appends ev to the tail of the queue, stamping its enqueue time
// for Scheduler.WaitForTask to turn into a queue-wait latency sample.
func (q *Queue) Push(ev Event) {
	ev.enqueuedAt = time.Now()
	g := q.lock.Lock()
	*g.Value() = append(*g.Value(), ev)
	g.Unlock()
}

// Pop removes and returns the event at the head of the queue, if any.
func (q *Queue) Pop() (Event, bool) {
	g := q.lock.Lock()
	defer g.Unlock()
	items := *g.Value()
	if len(items) == 0 {
		return Event{}, false
	}
	ev := items[0]
	*g.Value() = items[1:]
	return ev, true
}

// Len reports the number of events currently queued.
func (q *Queue) Len() int {
	g := q.lock.Lock()
	defer g.Unlock()
	return len(*g.Value())
}
