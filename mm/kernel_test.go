package mm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKernelSpace_MapDeviceReservesOneSlot(t *testing.T) {
	alloc := newTestAlloc(t)
	k := NewKernelSpace(alloc)

	slot, err := k.MapDevice(0x3000)
	require.NoError(t, err)

	pa, ok := k.SlotPhysAddr(slot)
	require.True(t, ok)
	require.Equal(t, uint64(0x3000), pa)
}

func TestKernelSpace_MapPhysicalReservesAContiguousRun(t *testing.T) {
	alloc := newTestAlloc(t)
	k := NewKernelSpace(alloc)

	slot, err := k.MapPhysical(0x10000, 3*PageSize)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pa, ok := k.SlotPhysAddr(slot + i)
		require.True(t, ok)
		require.Equal(t, uint64(0x10000)+uint64(i)*PageSize, pa)
	}
}

func TestKernelSpace_MapRunAlignsDownAnUnalignedStart(t *testing.T) {
	alloc := newTestAlloc(t)
	k := NewKernelSpace(alloc)

	slot, err := k.MapDevice(0x1234)
	require.NoError(t, err)

	pa, ok := k.SlotPhysAddr(slot)
	require.True(t, ok)
	require.Equal(t, uint64(0x1000), pa)
}

func TestKernelSpace_RunsOutOfWindowSlotsEventually(t *testing.T) {
	alloc := newTestAlloc(t)
	k := NewKernelSpace(alloc)

	var lastErr error
	for i := 0; i < kernelWindowSlots+1; i++ {
		_, lastErr = k.MapDevice(uint64(i) * PageSize)
		if lastErr != nil {
			break
		}
	}
	require.Equal(t, MappingError{Kind: RequestedSizeUnavailable}, lastErr)
}

func TestKernelSpace_SlotPhysAddrUnusedSlotReturnsFalse(t *testing.T) {
	alloc := newTestAlloc(t)
	k := NewKernelSpace(alloc)

	_, ok := k.SlotPhysAddr(0)
	require.False(t, ok)
}
