package sched

import "runtime"

// SwitchActionKind selects what ContextSwitch does with the departing
// thread once its register frame (here: nothing, since Go threads are
// goroutines) has been captured.
type SwitchActionKind uint8

const (
	// ActionYield re-queues the departing thread for another turn.
	ActionYield SwitchActionKind = iota
	// ActionFreeThread drops the departing thread; it is never
	// rescheduled.
	ActionFreeThread
	// ActionQueueAddUnlock registers the departing thread as a
	// waiter (Register) and only then runs Unlock, so a concurrent
	// notifier can never observe the lock free with the thread not
	// yet on the queue.
	ActionQueueAddUnlock
)

// SwitchAction is the second parameter to Thread.ContextSwitch,
// mirroring the original's three-variant descheduling action.
//
// ksync's own primitives (CondVar, Semaphore, BlockingLock, Barrier,
// OnceCell) do not route through SwitchAction: they park the calling
// goroutine directly, which already frees the underlying OS thread for
// other work. ActionQueueAddUnlock exists so thread-level code can
// express the same "register then unlock" ordering explicitly against
// an arbitrary waiter queue while going through the event-loop
// bookkeeping a real deschedule would.
type SwitchAction struct {
	Kind SwitchActionKind

	// Register is called, for ActionQueueAddUnlock, with a wake
	// callback the waiter queue should invoke exactly once to resume
	// this thread; it must return a cancel function.
	Register func(wake func()) (cancel func())
	// Unlock is called after Register returns, releasing whatever
	// lock guarded the predicate being waited on.
	Unlock func()
}

// ContextSwitch deschedules t according to action and blocks the
// calling goroutine until t is next dispatched (or, for
// ActionFreeThread, never returns: t will never run again, so its
// goroutine exits once the core has been handed back).
func (t *Thread) ContextSwitch(s *Scheduler, action SwitchAction) {
	switch action.Kind {
	case ActionYield:
		s.AddTask(ScheduleThreadEvent(t))
	case ActionFreeThread:
		// not requeued anywhere; t is simply never scheduled again.
	case ActionQueueAddUnlock:
		action.Register(func() { t.resumeCh <- struct{}{} })
		action.Unlock()
	}
	t.parkCh <- struct{}{}
	if action.Kind == ActionFreeThread {
		runtime.Goexit()
	}
	<-t.resumeCh
}
