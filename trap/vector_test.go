package trap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-kernelcore/sched"
)

func TestSlot_CombinesSourceAndCause(t *testing.T) {
	require.Equal(t, VectorSlot(SourceCurrentSPx+CauseIRQ), Slot(SourceCurrentSPx, CauseIRQ))
	require.Equal(t, VectorSlot(SourceLowerAArch64+CauseSync), Slot(SourceLowerAArch64, CauseSync))
}

func TestVector_UnpatchedSlotPanics(t *testing.T) {
	v := NewVector()
	require.Panics(t, func() {
		v.Dispatch(Slot(SourceCurrentSP0, CauseSync), &sched.Context{})
	})
}

func TestVector_PatchInstallsHandlerForDispatch(t *testing.T) {
	v := NewVector()
	slot := Slot(SourceLowerAArch64, CauseIRQ)
	var got *sched.Context

	v.Patch(slot, func(frame *sched.Context) *DescheduleAction {
		got = frame
		return &DescheduleAction{Kind: DescheduleYield}
	})

	frame := &sched.Context{}
	action := v.Dispatch(slot, frame)
	require.Same(t, frame, got)
	require.Equal(t, DescheduleYield, action.Kind)
}

func TestVector_PatchingOneSlotDoesNotAffectOthers(t *testing.T) {
	v := NewVector()
	v.Patch(Slot(SourceCurrentSP0, CauseIRQ), func(*sched.Context) *DescheduleAction { return nil })

	require.Panics(t, func() {
		v.Dispatch(Slot(SourceCurrentSP0, CauseSync), &sched.Context{})
	})
}
