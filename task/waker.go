package task

import "github.com/joeycumines/go-kernelcore/sched"

// Waker is handed to a Future on every poll. Calling Wake submits a
// fresh AsyncTask event for the same TaskID at the same priority, the
// same effect the original's WakerData-encoded RawWaker has, minus
// the bit-packing: a *Waker is already a concrete Go value carrying
// its TaskID directly, so there is no fake-pointer encoding to unpack
// on the way back out, and EventForWaker is a direct field read rather
// than the original's vtable-identity check.
type Waker struct {
	runtime *Runtime
	id      sched.TaskID
}

func newWaker(r *Runtime, id sched.TaskID) *Waker {
	return &Waker{runtime: r, id: id}
}

// TaskID returns the task this waker resumes.
func (w *Waker) TaskID() sched.TaskID { return w.id }

// Wake enqueues an AsyncTask event for this waker's task. Safe to call
// from any goroutine, including one started by an interrupt handler or
// another task's poll.
func (w *Waker) Wake() {
	w.runtime.scheduler.AddTask(sched.AsyncTaskEvent(w.id))
}

// EventForWaker reverses a Waker back into the Event that would poll
// its task, for code bridging an external notification (e.g. a
// completed DMA) back into the scheduler without going through
// Runtime.Poll's normal take/return bookkeeping.
func EventForWaker(w *Waker) sched.Event {
	return sched.AsyncTaskEvent(w.id)
}
