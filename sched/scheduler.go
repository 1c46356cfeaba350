package sched

import (
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-kernelcore/klog"
	"github.com/joeycumines/go-kernelcore/ksync"
)

// Scheduler holds the two global priority queues every core drains
// from. There is no per-core queue and no work-stealing beyond that:
// SMP load-balancing is, by design, nothing more than "any core pulls
// from the global queue".
type Scheduler struct {
	normal   *Queue
	realtime *Queue

	// pending is the Go stand-in for the architectural event
	// register SEV sets and WFE clears: AddTask sets it unconditionally,
	// WaitForTask clears it with a single compare-and-swap before
	// deciding whether to actually park, so a task added between a
	// core's last failed pop and the moment it parks is never missed.
	pending atomic.Bool

	parkLock *ksync.SpinLock[struct{}]
	parkCond *ksync.CondVar

	log     *klog.Logger
	metrics *Metrics
}

// WithMetrics attaches a Metrics to s; subsequent WaitForTask calls
// record queue-wait latency into it.
func (s *Scheduler) WithMetrics(m *Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Logger returns the Scheduler's configured logger, for components
// (task.Runtime, RunCore's own dispatch) that share its diagnostics
// sink rather than carrying a second one.
func (s *Scheduler) Logger() *klog.Logger { return s.log }

// NewScheduler constructs an empty Scheduler. ctrl masks interrupts
// around each priority queue's critical section; pass the CoreInfo of
// whichever core is expected to touch the scheduler most, or
// ksync.NoopInterruptController in tests.
func NewScheduler(ctrl ksync.InterruptController, log *klog.Logger) *Scheduler {
	if log == nil {
		log = klog.Nop()
	}
	return &Scheduler{
		normal:   NewQueue(ctrl),
		realtime: NewQueue(ctrl),
		parkLock: ksync.NewSpinLock(struct{}{}),
		parkCond: ksync.NewCondVar(),
		log:      log,
	}
}

func (s *Scheduler) recordWait(ev Event) {
	if s.metrics == nil || ev.enqueuedAt.IsZero() {
		return
	}
	s.metrics.RecordWait(time.Since(ev.enqueuedAt))
}

func (s *Scheduler) queueFor(p Priority) *Queue {
	if p == Realtime {
		return s.realtime
	}
	return s.normal
}

// AddTask pushes ev onto the priority-appropriate queue and wakes any
// core parked in WaitForTask — the Go stand-in for sev.
func (s *Scheduler) AddTask(ev Event) {
	s.queueFor(ev.Priority).Push(ev)
	// Setting pending under parkLock orders it against WaitForTask's
	// check-then-park: either that check sees the flag, or the parking
	// core's waiter is already queued when NotifyAll runs.
	g := s.parkLock.Lock()
	s.pending.Store(true)
	g.Unlock()
	s.parkCond.NotifyAll()
}

// WaitForTask polls the realtime queue, then the normal queue, then
// parks with wfe semantics. It is not a hard priority guarantee —
// AddTask on one core can race with a park on another — but the sticky
// pending flag and the unconditional notify on every AddTask guarantee
// liveness: a core can never park through an event it hasn't yet seen.
func (s *Scheduler) WaitForTask() Event {
	for {
		if ev, ok := s.realtime.Pop(); ok {
			s.recordWait(ev)
			return ev
		}
		if ev, ok := s.normal.Pop(); ok {
			s.recordWait(ev)
			return ev
		}
		if s.pending.CompareAndSwap(true, false) {
			continue
		}
		g := s.parkLock.Lock()
		if s.pending.CompareAndSwap(true, false) {
			g.Unlock()
			continue
		}
		s.parkCond.Wait(s.parkLock)
		g.Unlock()
	}
}
