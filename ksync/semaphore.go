package ksync

// Semaphore is a counting semaphore: an integer guarded by a
// SpinLock plus a CondVar. Down waits for value > 0 then decrements;
// Up increments and notifies one waiter.
type Semaphore struct {
	value *SpinLock[int]
	cond  *CondVar
}

// NewSemaphore constructs a Semaphore with the given initial value.
func NewSemaphore(initial int) *Semaphore {
	return &Semaphore{value: NewSpinLock(initial), cond: NewCondVar()}
}

// Down blocks until the semaphore's value is greater than zero, then
// decrements it.
func (s *Semaphore) Down() {
	g := s.value.Lock()
	s.cond.WaitWhile(s.value, func() bool {
		return *g.Value() == 0
	})
	*g.Value()--
	g.Unlock()
}

// TryDown attempts to decrement without blocking, returning false if
// the value is currently zero.
func (s *Semaphore) TryDown() bool {
	g, ok := s.value.TryLock()
	if !ok {
		return false
	}
	defer g.Unlock()
	if *g.Value() == 0 {
		return false
	}
	*g.Value()--
	return true
}

// Up increments the semaphore's value and wakes one waiter.
func (s *Semaphore) Up() {
	g := s.value.Lock()
	*g.Value()++
	g.Unlock()
	s.cond.NotifyOne()
}

// Value returns a snapshot of the current count, for diagnostics.
func (s *Semaphore) Value() int {
	g := s.value.Lock()
	defer g.Unlock()
	return *g.Value()
}
