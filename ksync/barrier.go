package ksync

// Barrier is a countdown barrier guarded by a SpinLock plus a
// CondVar, ported directly from Barrier::sync: the last arrival wakes
// everyone else, earlier arrivals wait_while the count is nonzero.
type Barrier struct {
	count *SpinLock[uint32]
	cond  *CondVar
}

// NewBarrier constructs a Barrier requiring n calls to Sync before any
// of them return.
func NewBarrier(n uint32) *Barrier {
	return &Barrier{count: NewSpinLock(n), cond: NewCondVar()}
}

// Sync blocks until n total calls to Sync (across the Barrier's
// lifetime group) have been made.
func (b *Barrier) Sync() {
	g := b.count.Lock()
	if *g.Value() == 0 {
		g.Unlock()
		panic("ksync: barrier synced more times than its count")
	}
	*g.Value()--
	if *g.Value() == 0 {
		g.Unlock()
		b.cond.NotifyAll()
		return
	}
	b.cond.WaitWhile(b.count, func() bool {
		return *g.Value() > 0
	})
	g.Unlock()
}
