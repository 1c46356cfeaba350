package ksync

import "sync"

// Locker is the minimal interface CondVar needs from whatever lock
// guards the predicate being waited on. *SpinLock and
// *InterruptSpinLock both satisfy it via their LockLocker/UnlockLocker
// methods, so a CondVar can be paired with either.
type Locker interface {
	LockLocker()
	UnlockLocker()
}

// locker is kept as an internal alias so existing method signatures
// below read naturally; it is identical to Locker.
type locker = Locker

// waiterNode is a single parked waiter. Exactly one of ch/wake is
// set: ch for a stackful thread parked on a channel (the Go stand-in
// for SwitchAction::QueueAddUnlock), wake for a stackless task that
// registered interest via its Waker instead of blocking a goroutine.
// cancelled lets a task abandon a registered waker without it firing.
type waiterNode struct {
	ch        chan struct{}
	wake      func()
	cancelled bool
}

// CondVar is a FIFO wait queue paired with zero or more locks, ported
// from sync.rs's CondVar. notify_one/notify_all there pop from (or
// splice) a ThreadQueue and hand threads back to the scheduler; here
// the same FIFO ordering is preserved by a queue of *waiterNode, and
// each notification either closes a channel (unparking a blocked
// goroutine standing in for a thread) or invokes a callback (waking a
// stackless task).
type CondVar struct {
	mu      sync.Mutex
	waiters []*waiterNode
}

// NewCondVar constructs an empty CondVar.
func NewCondVar() *CondVar {
	return &CondVar{}
}

// Wait releases l, blocks until woken by NotifyOne/NotifyAll, then
// reacquires l before returning. The queue entry is pushed before l
// is released, exactly as SwitchAction::QueueAddUnlock requires, so a
// concurrent notify issued after Wait begins can never be missed.
func (c *CondVar) Wait(l locker) {
	n := &waiterNode{ch: make(chan struct{})}
	c.mu.Lock()
	c.waiters = append(c.waiters, n)
	c.mu.Unlock()

	l.UnlockLocker()
	<-n.ch
	l.LockLocker()
}

// WaitWhile loops Wait while cond returns true; spurious wakeups are
// not excluded by the queue itself, matching wait_while in sync.rs.
func (c *CondVar) WaitWhile(l locker, cond func() bool) {
	for cond() {
		c.Wait(l)
	}
}

// RegisterWaker enqueues a wake callback for a stackless task that is
// suspending instead of blocking a goroutine, and returns a cancel
// function the caller must invoke if it abandons the wait (observes
// its predicate false again) without ever being woken, so a stale
// waker is not fired later against a future poll that already moved on.
func (c *CondVar) RegisterWaker(wake func()) (cancel func()) {
	n := &waiterNode{wake: wake}
	c.mu.Lock()
	c.waiters = append(c.waiters, n)
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		n.cancelled = true
		c.mu.Unlock()
	}
}

// NotifyOne wakes the single longest-waiting live waiter, if any.
func (c *CondVar) NotifyOne() {
	c.mu.Lock()
	var n *waiterNode
	for len(c.waiters) > 0 {
		n, c.waiters = c.waiters[0], c.waiters[1:]
		if !n.cancelled {
			break
		}
		n = nil
	}
	c.mu.Unlock()
	fire(n)
}

// NotifyAll wakes every current live waiter, in FIFO order, in one
// operation — the Go equivalent of splicing the whole ThreadQueue to
// the scheduler in a single add_all call.
func (c *CondVar) NotifyAll() {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, n := range waiters {
		fire(n)
	}
}

func fire(n *waiterNode) {
	if n == nil || n.cancelled {
		return
	}
	switch {
	case n.ch != nil:
		close(n.ch)
	case n.wake != nil:
		n.wake()
	}
}
