package ksync

// BlockingLock is a SpinLock<bool> plus a CondVar, ported directly
// from BlockingLockInner: acquiring the lock spins only long enough
// to flip the guard boolean, then blocks on the condvar while it is
// already held, rather than busy-spinning for the whole critical
// section (the usual "real" mutex built on top of a spinlock).
type BlockingLock struct {
	locked *SpinLock[bool]
	cond   *CondVar
}

// NewBlockingLock constructs an unlocked BlockingLock.
func NewBlockingLock() *BlockingLock {
	return &BlockingLock{locked: NewSpinLock(false), cond: NewCondVar()}
}

// Lock blocks until the lock is free, then claims it.
func (b *BlockingLock) Lock() {
	g := b.locked.Lock()
	b.cond.WaitWhile(b.locked, func() bool {
		locked := *g.Value()
		if !locked {
			*g.Value() = true
		}
		return locked
	})
	g.Unlock()
}

// Unlock releases the lock and wakes one waiter, if any.
func (b *BlockingLock) Unlock() {
	g := b.locked.Lock()
	*g.Value() = false
	g.Unlock()
	b.cond.NotifyOne()
}
