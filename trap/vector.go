// Package trap implements the synchronous-exception and IRQ bridge
// from interrupt context into thread/task context: the exception
// vector's sixteen trampoline slots, the 32-entry IRQ handler table,
// the 256-entry syscall dispatch table, and the async-syscall bridge.
// Ported from context.rs/exceptions.rs; there is no literal VBAR_EL1
// on this host, so Vector models the trampoline table's slot layout
// and patchability without the actual machine code it would hold.
package trap

import (
	"sync/atomic"

	"github.com/joeycumines/go-kernelcore/sched"
)

// VectorSlot identifies one of the vector table's sixteen entries:
// four exception sources (current-EL-SP0, current-EL-SPx,
// lower-EL-AArch64, lower-EL-AArch32) times four causes (sync, IRQ,
// FIQ, SError).
type VectorSlot int

const (
	SourceCurrentSP0 = iota * 4
	SourceCurrentSPx
	SourceLowerAArch64
	SourceLowerAArch32
)

const (
	CauseSync = iota
	CauseIRQ
	CauseFIQ
	CauseSError
)

func Slot(source, cause int) VectorSlot { return VectorSlot(source + cause) }

// Handler processes one trapped Frame. Returning a non-nil
// DescheduleAction tells the caller what to do with the interrupted
// thread; a nil action means simply return to it.
type Handler func(frame *sched.Context) *DescheduleAction

// DescheduleActionKind mirrors sched.SwitchActionKind for the subset
// of outcomes an exception handler can request of the thread it
// interrupted.
type DescheduleActionKind uint8

const (
	DescheduleYield DescheduleActionKind = iota
	DescheduleFreeThread
)

type DescheduleAction struct {
	Kind DescheduleActionKind
}

// Vector is the sixteen-entry trampoline table. Each slot's handler
// is stored behind an atomic.Pointer so Dispatch and a concurrent
// Patch never race, matching the "call instruction discoverable at a
// named offset so the kernel can retarget it at runtime" design — the
// atomic swap is this module's rendition of that "explicit I-cache
// maintenance sequence" retargeting, the same pattern IRQTable uses
// for its own handler slots.
type Vector struct {
	slots [16]atomic.Pointer[Handler]
}

// NewVector constructs a Vector with every slot set to a handler that
// panics, matching an unpatched trampoline trapping into a
// "no handler installed" fault.
func NewVector() *Vector {
	v := &Vector{}
	unpatched := Handler(func(*sched.Context) *DescheduleAction {
		panic("trap: unhandled exception: vector slot has no handler installed")
	})
	for i := range v.slots {
		v.slots[i].Store(&unpatched)
	}
	return v
}

// Patch installs fn at slot, the Go stand-in for rewriting the
// trampoline's call-site address and issuing
// "dc cvau; dsb ish; ic ivau; dsb ish; isb".
func (v *Vector) Patch(slot VectorSlot, fn Handler) {
	v.slots[slot].Store(&fn)
}

// Dispatch invokes the handler installed at slot with frame.
func (v *Vector) Dispatch(slot VectorSlot, frame *sched.Context) *DescheduleAction {
	h := v.slots[slot].Load()
	return (*h)(frame)
}
