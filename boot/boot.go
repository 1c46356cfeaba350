// Package boot implements the entry sequence described in the
// external-interfaces section: the shared initialization runs once,
// and only then does each of the four cores, core 0 included, start
// in its own goroutine to run its per-core-only setup.
package boot

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/joeycumines/go-kernelcore/kerrors"
	"github.com/joeycumines/go-kernelcore/klog"
	"github.com/joeycumines/go-kernelcore/ksync"
	"github.com/joeycumines/go-kernelcore/mm"
	"github.com/joeycumines/go-kernelcore/sched"
	"github.com/joeycumines/go-kernelcore/task"
	"github.com/joeycumines/go-kernelcore/trap"
)

// Kernel is everything boot hands back once every core has joined:
// the scheduler each core's event loop will drive, the async task
// runtime, the address-space managers built from the memory the
// device tree reported, and the trap subsystem (exception vector, IRQ
// table, syscall table) every kernel thread traps through.
type Kernel struct {
	Scheduler *sched.Scheduler
	Runtime   *task.Runtime
	Kernel    *mm.KernelSpace
	Alloc     *mm.PageAlloc
	Layout    mm.PhysicalLayout
	Log       *klog.Logger

	Vector   *trap.Vector
	IRQs     *trap.IRQTable
	Syscalls *trap.SyscallTable

	// pendingIRQs is the interrupt-controller shim's pending-source
	// register: RaiseIRQ sets bits, the vector's IRQ slot reads and
	// clears them via trap.HandleIRQ's readPending callback.
	pendingIRQs atomic.Uint32
}

// RaiseIRQ marks irq pending in the interrupt-controller shim, the Go
// stand-in for a peripheral asserting its line; the next trap into the
// vector's IRQ slot drains it via k.IRQs.
func (k *Kernel) RaiseIRQ(irq int) {
	k.pendingIRQs.Or(uint32(1) << uint(irq))
}

// HandleTrap dispatches the handler installed at slot against ctx and,
// if servicing it requests a deschedule, carries that out against th.
// This is the call site a running kernel thread reaches on a
// synchronous exception, IRQ, or syscall: the Go stand-in for a
// literal trap into VBAR_EL1, since nothing below the Go runtime
// vectors control flow here the way real hardware would.
func (k *Kernel) HandleTrap(th *sched.Thread, slot trap.VectorSlot, ctx *sched.Context) {
	action := k.Vector.Dispatch(slot, ctx)
	if action == nil {
		return
	}
	switch action.Kind {
	case trap.DescheduleYield:
		th.Yield(k.Scheduler)
	case trap.DescheduleFreeThread:
		th.ContextSwitch(k.Scheduler, sched.SwitchAction{Kind: sched.ActionFreeThread})
	}
}

// Boot runs the four-core boot sequence against dtbBlob, a flattened
// device tree image, logging through log (a no-op logger if nil). Once
// the shared Kernel is ready, every core (including core 0) runs
// initCore, its per-core-only setup, in its own goroutine.
func Boot(ctx context.Context, dtbBlob []byte, log *klog.Logger) (*Kernel, error) {
	if log == nil {
		log = klog.Nop()
	}

	layout, err := memoryLayout(dtbBlob)
	if err != nil {
		return nil, err
	}

	alloc, err := mm.InitPhysicalAlloc(layout.Base, layout.End())
	if err != nil {
		return nil, err
	}

	s := sched.New(ksync.NoopInterruptController, sched.WithLogger(log), sched.WithSchedulerMetrics(sched.NewMetrics()))
	rt := task.NewRuntime(s)
	kernelSpace := mm.NewKernelSpace(alloc)

	k := &Kernel{
		Scheduler: s,
		Runtime:   rt,
		Kernel:    kernelSpace,
		Alloc:     alloc,
		Layout:    layout,
		Log:       log,
		Vector:    trap.NewVector(),
		IRQs:      trap.NewIRQTable(log),
		Syscalls:  trap.NewSyscallTable(),
	}

	// The lower-EL-AArch64 IRQ slot drains k.IRQs against the shim's
	// pending register; the matching sync slot dispatches a trapped
	// svc's immediate (the ISS field of a synchronous-exception ESR)
	// to k.Syscalls.
	k.Vector.Patch(trap.Slot(trap.SourceLowerAArch64, trap.CauseIRQ), trap.HandleIRQ(k.IRQs, func() uint32 { return k.pendingIRQs.Swap(0) }))
	k.Vector.Patch(trap.Slot(trap.SourceLowerAArch64, trap.CauseSync), func(ctx *sched.Context) *trap.DescheduleAction {
		return k.Syscalls.Dispatch(uint16(ctx.ESR), ctx)
	})

	g, gctx := errgroup.WithContext(ctx)
	var (
		errsMu sync.Mutex
		errs   []error
	)
	for core := 0; core < sched.NumCores; core++ {
		core := core
		g.Go(func() error {
			err := initCore(gctx, core, k)
			if err != nil {
				errsMu.Lock()
				errs = append(errs, err)
				errsMu.Unlock()
			}
			return err
		})
	}
	g.Wait()
	// Collected independently of errgroup's own (first-error-wins)
	// return value, since more than one core can fail to join at once
	// and every failure belongs in the report, not just the first.
	if len(errs) > 0 {
		return nil, &kerrors.AggregateError{Errors: errs}
	}
	return k, nil
}

// initCore performs the per-core-only half of boot: every core,
// including 0, runs it once the shared Kernel has been built.
func initCore(ctx context.Context, coreID int, k *Kernel) error {
	sched.WithCurrentCore(coreID, func(info *sched.CoreInfo) {
		_ = info
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// RunCores launches RunCore on every core as a background goroutine,
// handing EventAsyncTask dispatch to k.Runtime. It returns immediately;
// callers own the returned goroutines' lifetime via their own
// mechanism (this kernel core has no shutdown path, matching the
// original, which never returns from its per-core loop).
func (k *Kernel) RunCores() {
	for core := 0; core < sched.NumCores; core++ {
		go k.Scheduler.RunCore(core, k.Runtime)
	}
}
