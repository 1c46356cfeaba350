// Package ksync provides the kernel's synchronization primitives:
// spinlocks (plain and interrupt-masking), condition variables,
// blocking locks, semaphores, a barrier and a one-shot cell. All lock
// APIs return RAII-style guards; releasing the guard releases the
// lock, mirroring the teacher's functional-options/guard idioms
// ported from spinlock.rs's Lock<T, L>/LockGuard pair.
//
// A real AArch64 core has exactly one hardware interrupt line per
// core, masked via the DAIF register. Go has no equivalent concept,
// so InterruptController stands in for "the current core's interrupt
// mask": sched.CoreInfo implements it, and anything that needs an
// InterruptSpinLock is handed one at construction time. Code that
// only ever runs in tests, outside a scheduled core, can use
// NoopInterruptController.
package ksync

import (
	"runtime"
	"sync/atomic"
)

// InterruptState is an opaque token returned by
// InterruptController.Disable and consumed by Restore. It stands in
// for the DAIF register snapshot the original kernel saves across a
// critical section.
type InterruptState any

// InterruptController disables and restores a core's interrupt mask.
// InterruptSpinLock calls Disable before attempting to acquire its
// flag and Restore after releasing it, so the calling core cannot be
// re-entered by its own IRQ handler while the lock is held.
type InterruptController interface {
	Disable() InterruptState
	Restore(InterruptState)
}

type noopController struct{}

func (noopController) Disable() InterruptState    { return nil }
func (noopController) Restore(InterruptState) {}

// NoopInterruptController is an InterruptController that does
// nothing; useful in tests and for locks that are never touched from
// interrupt context.
var NoopInterruptController InterruptController = noopController{}

// SpinLock is a CAS spinlock guarding a value of type T, grounded on
// SpinLockInner: acquisition is a compare-and-swap on a boolean flag,
// contention spins re-reading the flag before retrying the CAS.
type SpinLock[T any] struct {
	flag  atomic.Bool
	value T
}

// NewSpinLock constructs a SpinLock holding the given initial value.
func NewSpinLock[T any](value T) *SpinLock[T] {
	return &SpinLock[T]{value: value}
}

// SpinLockGuard grants access to the value protected by a SpinLock.
// It must be released exactly once via Unlock.
type SpinLockGuard[T any] struct {
	l *SpinLock[T]
}

func (l *SpinLock[T]) tryAcquire() bool {
	return l.flag.CompareAndSwap(false, true)
}

// Lock blocks until the spinlock is acquired and returns a guard.
func (l *SpinLock[T]) Lock() *SpinLockGuard[T] {
	for !l.tryAcquire() {
		for l.flag.Load() {
			runtime.Gosched()
		}
	}
	return &SpinLockGuard[T]{l: l}
}

// TryLock attempts to acquire the lock without blocking.
func (l *SpinLock[T]) TryLock() (*SpinLockGuard[T], bool) {
	if l.tryAcquire() {
		return &SpinLockGuard[T]{l: l}, true
	}
	return nil, false
}

func (l *SpinLock[T]) unlock() {
	l.flag.Store(false)
}

// Value returns the protected value. Callers must hold the guard
// returned by Lock/TryLock for the duration of any access.
func (g *SpinLockGuard[T]) Value() *T {
	return &g.l.value
}

// Unlock releases the spinlock. The guard must not be used afterwards.
func (g *SpinLockGuard[T]) Unlock() {
	g.l.unlock()
}

// LockLocker implements Locker by discarding the returned guard; used
// where only mutual exclusion, not the value access, is needed (e.g.
// when handing a SpinLock to a CondVar as the wait lock).
func (l *SpinLock[T]) LockLocker() { _ = l.Lock() }

// UnlockLocker implements the other half of Locker.
func (l *SpinLock[T]) UnlockLocker() { l.unlock() }

// InterruptSpinLock is a SpinLock that additionally disables the
// owning core's interrupts for the duration of the critical section.
// The interrupt state is stored in the lock itself, not the guard —
// mirroring InterruptSpinLockInner exactly — because CondVar.Wait
// intentionally discards its guard mid-wait (the calling thread parks
// before the guard would normally be dropped) and the lock, not the
// guard, is what must remember who last disabled interrupts.
type InterruptSpinLock[T any] struct {
	flag  atomic.Bool
	state InterruptState
	ctrl  InterruptController
	value T
}

// NewInterruptSpinLock constructs an InterruptSpinLock using ctrl to
// mask/unmask interrupts around the critical section.
func NewInterruptSpinLock[T any](value T, ctrl InterruptController) *InterruptSpinLock[T] {
	if ctrl == nil {
		ctrl = NoopInterruptController
	}
	return &InterruptSpinLock[T]{value: value, ctrl: ctrl}
}

// InterruptSpinLockGuard grants access to the value protected by an
// InterruptSpinLock.
type InterruptSpinLockGuard[T any] struct {
	l *InterruptSpinLock[T]
}

func (l *InterruptSpinLock[T]) tryAcquire() bool {
	return l.flag.CompareAndSwap(false, true)
}

// Lock disables interrupts, blocks until the flag is acquired
// (restoring interrupts between attempts so a pending IRQ on this
// core is not indefinitely starved), and returns a guard.
func (l *InterruptSpinLock[T]) Lock() *InterruptSpinLockGuard[T] {
	state := l.ctrl.Disable()
	for !l.tryAcquire() {
		l.ctrl.Restore(state)
		for l.flag.Load() {
			runtime.Gosched()
		}
		state = l.ctrl.Disable()
	}
	l.state = state
	return &InterruptSpinLockGuard[T]{l: l}
}

// Value returns the protected value.
func (g *InterruptSpinLockGuard[T]) Value() *T {
	return &g.l.value
}

// Unlock releases the flag and restores the interrupt state captured
// by the matching Lock call.
func (g *InterruptSpinLockGuard[T]) Unlock() {
	l := g.l
	state := l.state
	l.state = nil
	l.flag.Store(false)
	l.ctrl.Restore(state)
}

// LockLocker/UnlockLocker implement Locker for use with CondVar.
func (l *InterruptSpinLock[T]) LockLocker() { _ = l.Lock() }
func (l *InterruptSpinLock[T]) UnlockLocker() {
	state := l.state
	l.state = nil
	l.flag.Store(false)
	l.ctrl.Restore(state)
}
