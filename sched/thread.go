package sched

import "github.com/joeycumines/go-kernelcore/kerrors"

// Thread is a stackful kernel or user thread. A real Thread owns its
// kernel stack and a pointer into it for the last saved register
// frame; here the "stack" is a goroutine's own Go stack, and
// lastContext is never written by a switch in this package (nothing
// below the Go runtime saves or reconstructs registers), so it stays
// the zero Context. Per §4.5/§4.1, a Thread is owned at any instant
// by exactly one of: the scheduler's queue, a wait queue, or one
// core's current-thread cell — that invariant is enforced here by
// protocol (Yield re-enqueues before parking; ContextSwitch with
// ActionQueueAddUnlock registers on the wait queue before parking) not
// by any lock on the Thread struct itself.
type Thread struct {
	ID             uint64
	IsKernelThread bool
	Priority       Priority

	lastContext Context

	fn       func(*Thread)
	started  bool
	parkCh   chan struct{}
	resumeCh chan struct{}

	// Panic holds the recovered panic value from fn, if it panicked
	// instead of returning or calling ContextSwitch. RunCore surfaces
	// and clears this after run/resume returns, so one thread's bug
	// cannot take its whole core down.
	Panic *kerrors.PanicError
}

// NewThread constructs a Thread with a startup closure consumed the
// first time the scheduler installs it as current, mirroring the
// original's "fabricated initial context whose LR points to a
// trampoline that consumes the closure". fn must eventually return (the
// Go stand-in for the trampoline's final call to stop) or call
// t.Yield/t.ContextSwitch to hand the core back to the event loop.
func NewThread(id uint64, kernel bool, priority Priority, fn func(*Thread)) *Thread {
	return &Thread{
		ID:             id,
		IsKernelThread: kernel,
		Priority:       priority,
		fn:             fn,
		parkCh:         make(chan struct{}),
		resumeCh:       make(chan struct{}),
	}
}

// LastContext returns the thread's saved register frame. No switch
// path in this package saves one, so this is always the zero Context.
func (t *Thread) LastContext() Context { return t.lastContext }

// run is invoked by the scheduler's event loop the first time th is
// dispatched; it starts th.fn on a dedicated goroutine and returns
// once that goroutine has either exited (FreeThread) or handed control
// back to the event loop via a ContextSwitch.
func (t *Thread) run(s *Scheduler) {
	t.started = true
	go func() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Panic = &kerrors.PanicError{Value: r}
				}
			}()
			t.fn(t)
		}()
		t.parkCh <- struct{}{}
	}()
	<-t.parkCh
}

// resume wakes a previously parked thread and blocks until it next
// hands control back to the event loop.
func (t *Thread) resume(s *Scheduler) {
	t.resumeCh <- struct{}{}
	<-t.parkCh
}

// Yield performs SwitchAction::Yield: re-queues t at its own priority
// and hands the core back to the event loop, blocking the calling
// goroutine until the scheduler dispatches t again.
func (t *Thread) Yield(s *Scheduler) {
	t.ContextSwitch(s, SwitchAction{Kind: ActionYield})
}
