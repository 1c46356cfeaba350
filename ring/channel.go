package ring

import (
	"github.com/joeycumines/go-kernelcore/ksync"
	"github.com/joeycumines/go-kernelcore/task"
)

// Channel wraps an Spsc with a length counter guarded by a SpinLock
// and a CondVar, turning the underlying single-producer/single-consumer
// ring into a channel any number of producers and consumers can share:
// every send and receive runs entirely under the length lock, so the
// ring only ever sees one mutator at a time regardless of how many
// goroutines call TrySend/SendBlocking/Send concurrently. Length, not
// the ring's own head/tail, is the source of truth for blocking and
// waking — matching the original's "length is the source of truth".
type Channel[T any] struct {
	buf      *Spsc[T]
	length   *ksync.SpinLock[int]
	cond     *ksync.CondVar
	capacity int
}

// NewChannel constructs a Channel with the given capacity, which must
// be a power of two.
func NewChannel[T any](capacity uint32) *Channel[T] {
	return &Channel[T]{
		buf:      NewSpsc[T](capacity),
		length:   ksync.NewSpinLock(0),
		cond:     ksync.NewCondVar(),
		capacity: int(capacity),
	}
}

// TrySend sends v without blocking, reporting false if the channel is
// full.
func (c *Channel[T]) TrySend(v T) bool {
	g := c.length.Lock()
	defer g.Unlock()
	if !c.buf.TrySend(v) {
		return false
	}
	old := *g.Value()
	*g.Value() = old + 1
	if old == 0 {
		c.cond.NotifyOne()
	}
	return true
}

// TryRecv receives without blocking, reporting false if the channel is
// empty.
func (c *Channel[T]) TryRecv() (T, bool) {
	g := c.length.Lock()
	defer g.Unlock()
	v, ok := c.buf.TryRecv()
	if !ok {
		var zero T
		return zero, false
	}
	old := *g.Value()
	*g.Value() = old - 1
	if old == c.capacity {
		c.cond.NotifyOne()
	}
	return v, true
}

// SendBlocking blocks the calling goroutine — a kernel-thread
// goroutine, not a task — until there is room, then sends. It must
// never be called from inside a Future.Poll, which must not block.
func (c *Channel[T]) SendBlocking(v T) {
	g := c.length.Lock()
	c.cond.WaitWhile(c.length, func() bool { return *g.Value() == c.capacity })
	if !c.buf.TrySend(v) {
		g.Unlock()
		panic("ring: send_blocking observed a full channel after wait_while returned")
	}
	old := *g.Value()
	*g.Value() = old + 1
	g.Unlock()
	if old == 0 {
		c.cond.NotifyOne()
	}
}

// RecvBlocking blocks the calling goroutine until a value is
// available, then receives it.
func (c *Channel[T]) RecvBlocking() T {
	g := c.length.Lock()
	c.cond.WaitWhile(c.length, func() bool { return *g.Value() == 0 })
	v, ok := c.buf.TryRecv()
	if !ok {
		g.Unlock()
		panic("ring: recv_blocking observed an empty channel after wait_while returned")
	}
	old := *g.Value()
	*g.Value() = old - 1
	g.Unlock()
	if old == c.capacity {
		c.cond.NotifyOne()
	}
	return v
}

// sendFuture is the async counterpart of SendBlocking: instead of
// parking the calling goroutine, a full channel registers the task's
// Waker with the CondVar and returns Pending, to be re-polled once
// some receiver makes room.
type sendFuture[T any] struct {
	ch    *Channel[T]
	value T
	sent  bool
}

// Send returns a task.Future that completes once v has been enqueued.
func (c *Channel[T]) Send(v T) task.Future {
	return &sendFuture[T]{ch: c, value: v}
}

func (f *sendFuture[T]) Poll(w *task.Waker) bool {
	if f.sent {
		return true
	}
	c := f.ch
	g := c.length.Lock()
	if *g.Value() == c.capacity {
		c.cond.RegisterWaker(w.Wake)
		g.Unlock()
		return false
	}
	if !c.buf.TrySend(f.value) {
		g.Unlock()
		panic("ring: send future observed a full channel under the length lock")
	}
	old := *g.Value()
	*g.Value() = old + 1
	g.Unlock()
	if old == 0 {
		c.cond.NotifyOne()
	}
	f.sent = true
	return true
}

// Recv returns a future that resolves to the next value sent on c.
// Call Value after Poll returns true.
func (c *Channel[T]) Recv() *RecvFuture[T] {
	return &RecvFuture[T]{ch: c}
}

// RecvFuture is the value-producing future returned by Channel.Recv.
// Go's task.Future is Output=() only (mirroring the original's
// spawn_async, which only ever spawns unit-returning futures); a
// value-producing await is instead driven manually, by polling the
// same Waker and reading Value once Poll reports ready — the same
// pattern an async fn written by hand would use to drive an inner
// future to completion inside a bigger state machine.
type RecvFuture[T any] struct {
	ch    *Channel[T]
	value T
}

func (f *RecvFuture[T]) Poll(w *task.Waker) bool {
	c := f.ch
	g := c.length.Lock()
	if *g.Value() == 0 {
		c.cond.RegisterWaker(w.Wake)
		g.Unlock()
		return false
	}
	v, ok := c.buf.TryRecv()
	if !ok {
		g.Unlock()
		panic("ring: recv future observed an empty channel under the length lock")
	}
	old := *g.Value()
	*g.Value() = old - 1
	g.Unlock()
	if old == c.capacity {
		c.cond.NotifyOne()
	}
	f.value = v
	return true
}

// Value returns the received value. Valid only after Poll has
// returned true.
func (f *RecvFuture[T]) Value() T { return f.value }
