package trap

import (
	"github.com/joeycumines/go-kernelcore/sched"
	"github.com/joeycumines/go-kernelcore/task"
)

const syscallSlots = 256

// SyscallHandler runs a syscall to completion and writes its return
// value(s) directly into ctx's x0/x1. A handler that needs to await
// something calls RunAsyncHandler from its body, which blocks the
// handler until the spawned future completes.
type SyscallHandler func(ctx *sched.Context)

// SyscallTable is the 256-entry table the sync-exception handler
// looks a trapped svc's immediate field up in. A nil slot means "kill
// the thread", matching DescheduleFreeThread.
type SyscallTable struct {
	handlers [syscallSlots]SyscallHandler
}

func NewSyscallTable() *SyscallTable { return &SyscallTable{} }

func (t *SyscallTable) Register(imm uint16, fn SyscallHandler) { t.handlers[imm] = fn }

// Dispatch looks imm up and either runs it or reports that the thread
// should be killed.
func (t *SyscallTable) Dispatch(imm uint16, ctx *sched.Context) *DescheduleAction {
	h := t.handlers[imm]
	if h == nil {
		return &DescheduleAction{Kind: DescheduleFreeThread}
	}
	h(ctx)
	return nil
}

// RunAsyncHandler spawns fut as a task on rt and blocks the calling
// goroutine — the syscall's own kernel-thread goroutine, never a task
// — until it completes, then writes its result into ctx via store.
// This is the bridge a syscall handler that needs to await something
// — reading a pipe, waiting on a semaphore, writing to disk — goes
// through instead of blocking the issuing core directly: the spawned
// task is polled by whichever core's event loop picks up its
// AsyncTask event next, and this thread's own goroutine simply parks
// on a channel receive, the same native-blocking pattern every other
// ksync primitive uses rather than routing through
// sched.Thread.ContextSwitch.
func RunAsyncHandler[T any](
	rt *task.Runtime,
	ctx *sched.Context,
	fut ResultFuture[T],
	store func(ctx *sched.Context, result T),
) {
	done := make(chan T, 1)
	wrapped := task.FutureFunc(func(w *task.Waker) bool {
		ready := fut.Poll(w)
		if ready {
			done <- fut.Value()
		}
		return ready
	})
	rt.SpawnAsync(wrapped)
	store(ctx, <-done)
}

// ResultFuture is a task.Future that additionally produces a value of
// type T once ready, the same pattern ring.RecvFuture uses.
type ResultFuture[T any] interface {
	task.Future
	Value() T
}
