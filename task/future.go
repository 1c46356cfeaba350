// Package task implements the stackless-task runtime that coexists
// with sched's stackful threads on the same scheduler: spawn_async
// inserts a Ready task and enqueues an AsyncTask event at the task's
// priority; the scheduler's event loop polls it by TaskID, rebuilding
// a Waker whose wake call re-enqueues the same TaskID.
//
// Go has no built-in poll-based future, unlike Rust's core::future, so
// Future here is a minimal interface rather than a language feature —
// this is the one place a fairly literal translation of the mechanism
// (not just its externally observed behavior) is warranted, since the
// waker-coalescing and take/return bookkeeping in §4.7 is exactly what
// the runtime has to get right.
package task

import "github.com/joeycumines/go-kernelcore/sched"

// Future is polled with a Waker it may stash for later use (typically
// by handing w.Wake to some event source) and returns true once it
// has produced its result and will never be polled again.
type Future interface {
	Poll(w *Waker) (ready bool)
}

// FutureFunc adapts a plain function into a Future.
type FutureFunc func(w *Waker) bool

func (f FutureFunc) Poll(w *Waker) bool { return f(w) }

type yieldFuture struct{ yielded bool }

// Yield returns a Future that is Pending exactly once, waking itself
// immediately so it is polled again on the next pass through the
// scheduler — the async equivalent of Thread.Yield.
func Yield() Future { return &yieldFuture{} }

func (y *yieldFuture) Poll(w *Waker) bool {
	if !y.yielded {
		y.yielded = true
		w.Wake()
		return false
	}
	return true
}

// Priority re-exports sched.Priority so callers of this package do
// not need a separate import for the common case of spawning a task.
type Priority = sched.Priority

const (
	Normal   = sched.Normal
	Realtime = sched.Realtime
)
