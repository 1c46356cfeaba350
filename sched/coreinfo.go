package sched

import (
	"sync/atomic"

	"github.com/joeycumines/go-kernelcore/ksync"
)

// NumCores is the number of application cores on the target board (a
// Raspberry Pi 3/4 class SoC); SMP load-balancing beyond "any core
// pulls from the global queue" is out of scope, so this is a fixed
// constant rather than a configurable core count.
const NumCores = 4

// CoreInfo is per-core state: the thread currently installed on this
// core, if any, and the stack pointer used when no thread is running
// (here: unused bookkeeping, since the stack Go actually runs on is
// managed by its own runtime, not something CoreInfo points at). It is
// cache-line padded because on real hardware each core's CoreInfo
// lives in its own cache line to avoid false sharing between cores
// polling their own state.
//
// CoreInfo itself implements ksync.InterruptController: masking
// interrupts "on this core" has no hardware referent on this host, so
// Disable/Restore are no-ops. It lets an InterruptSpinLock be built
// with a given core's CoreInfo, the way the original kernel keeps one
// interrupt mask per CPU; boot.Boot builds the scheduler's queues with
// ksync.NoopInterruptController instead.
type CoreInfo struct {
	currentThread atomic.Pointer[Thread]
	coreSP        uint64
	_             [cacheLineSize - 8 - 8]byte
}

func (c *CoreInfo) Disable() ksync.InterruptState  { return nil }
func (c *CoreInfo) Restore(ksync.InterruptState) {}

// AllCores holds the CoreInfo for every core, indexed by core ID (the
// Go stand-in for reading the low two bits of the affinity register).
var AllCores [NumCores]*CoreInfo

func init() {
	for i := range AllCores {
		AllCores[i] = &CoreInfo{}
	}
}

// CurrentThread returns the thread currently installed on this core,
// or nil if the core is idling in the event loop.
func (c *CoreInfo) CurrentThread() *Thread { return c.currentThread.Load() }

// WithCurrentCore is the only sanctioned way to touch a core's
// CoreInfo: it disables interrupts on coreID, runs fn with a pointer
// to that core's CoreInfo, and restores the prior interrupt mask
// before returning. Threads can migrate between cores between any two
// yields, so retaining the *CoreInfo past the closure, or reading it
// for any core other than coreID, is unsound; callers must not let
// the reference escape fn.
func WithCurrentCore(coreID int, fn func(*CoreInfo)) {
	core := AllCores[coreID]
	state := core.Disable()
	defer core.Restore(state)
	fn(core)
}
