package ksync

// OnceCell stores an optional value of type T guarded by a SpinLock
// plus a CondVar: Set wakes every waiter, Get blocks on the CondVar
// until a value has been set. The guard is a SpinLock, not a
// BlockingLock, so contention on the cell's short critical sections
// spins rather than parks. Ported from BlockingOnceCell, used by
// process.Process for its exit-status handoff (a parent process
// blocks in Get until the child's exit code is Set).
type OnceCell[T any] struct {
	lock *SpinLock[onceCellState[T]]
	cond *CondVar
}

type onceCellState[T any] struct {
	set   bool
	value T
}

// NewOnceCell constructs an empty OnceCell.
func NewOnceCell[T any]() *OnceCell[T] {
	return &OnceCell[T]{lock: NewSpinLock(onceCellState[T]{}), cond: NewCondVar()}
}

// Set stores value and wakes every blocked Get caller. Calling Set
// more than once panics: the cell is one-shot by design, matching the
// exit-status use case where a process can only exit once.
func (c *OnceCell[T]) Set(value T) {
	g := c.lock.Lock()
	if g.Value().set {
		g.Unlock()
		panic("ksync: OnceCell set more than once")
	}
	*g.Value() = onceCellState[T]{set: true, value: value}
	g.Unlock()
	c.cond.NotifyAll()
}

// Get blocks until Set has been called, then returns the stored value.
func (c *OnceCell[T]) Get() T {
	g := c.lock.Lock()
	c.cond.WaitWhile(c.lock, func() bool {
		return !g.Value().set
	})
	value := g.Value().value
	g.Unlock()
	return value
}

// TryGet returns the stored value and true if Set has been called,
// or the zero value and false otherwise, without blocking.
func (c *OnceCell[T]) TryGet() (T, bool) {
	g := c.lock.Lock()
	defer g.Unlock()
	if !g.Value().set {
		var zero T
		return zero, false
	}
	return g.Value().value, true
}
