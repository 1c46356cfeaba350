package mm

import (
	"golang.org/x/exp/constraints"

	"github.com/joeycumines/go-kernelcore/ksync"
)

// kernelWindowSlots is the number of 4 KiB leaf slots reserved for
// MapDevice/MapDeviceBlock/MapPhysical/MapPhysicalNoncacheable, the Go
// stand-in for the two-page KERNEL_LEAF_TABLE (PG_SZ/8*2 entries).
const kernelWindowSlots = (PageSize / 8) * 2

// leafAttr records the attributes a kernel leaf descriptor carries:
// which MAIR index (memory-attribute index register entry) it was
// written with, matching set_mair(1) for device memory and
// set_mair(2) for non-cacheable normal memory in vmm.rs.
type leafAttr struct {
	pa   uint64
	mair uint8
}

// KernelSpace is the kernel's global translation table: a fixed
// window of leaf slots, each mapping one physical frame (or the start
// of a contiguous run of frames) into the kernel's own address space.
// All slots share a single lock rather than the original's
// lock-free-by-convention "not thread safe" kernel mapping calls,
// since unlike the boot-time original this may run from any of the
// four cores.
type KernelSpace struct {
	alloc *PageAlloc
	lock  *ksync.SpinLock[[]leafAttr] // index is the VA slot number; zero value means unused
}

// NewKernelSpace constructs a KernelSpace backed by alloc.
func NewKernelSpace(alloc *PageAlloc) *KernelSpace {
	slots := make([]leafAttr, kernelWindowSlots)
	for i := range slots {
		slots[i].mair = 0xFF // sentinel: unused
	}
	return &KernelSpace{alloc: alloc, lock: ksync.NewSpinLock(slots)}
}

func firstUnusedSlot(slots []leafAttr) (int, bool) {
	for i, s := range slots {
		if s.mair == 0xFF {
			return i, true
		}
	}
	return 0, false
}

// alignDownTo rounds n down to the nearest multiple of align. It is
// generic over any unsigned width since both the frame allocator's
// byte-offset arithmetic and the kernel window's page-number
// arithmetic reduce to the same truncating division, the way
// ringBuffer in the catrate package shares one generic body across
// whatever ordered element type its caller picks.
func alignDownTo[T constraints.Unsigned](n, align T) T {
	return (n / align) * align
}

func alignDown(pa uint64) uint64 { return alignDownTo(pa, uint64(PageSize)) }

// mapRun reserves one free slot and fills it and every following slot
// needed to cover [paStart, paStart+size) with contiguous leaf
// descriptors carrying the given MAIR index, exactly as
// map_device_block/map_physical/map_physical_noncacheable do. It
// returns the VA slot index the range begins at.
func (k *KernelSpace) mapRun(paStart, size uint64, mair uint8) (int, error) {
	alignedStart := alignDown(paStart)
	pages := int((paStart+size-alignedStart+PageSize-1) / PageSize)

	g := k.lock.Lock()
	defer g.Unlock()
	slots := *g.Value()
	start, ok := firstUnusedSlot(slots)
	if !ok || start+pages > len(slots) {
		return 0, MappingError{Kind: RequestedSizeUnavailable}
	}
	for i := 0; i < pages; i++ {
		if slots[start+i].mair != 0xFF {
			return 0, MappingError{Kind: LeafTableSpotTaken}
		}
	}
	for i := 0; i < pages; i++ {
		slots[start+i] = leafAttr{pa: alignedStart + uint64(i)*PageSize, mair: mair}
	}
	Barrier()
	return start, nil
}

// MapDevice reserves a single 4 KiB slot for the page containing pa
// with device MAIR attributes and returns the VA slot index.
func (k *KernelSpace) MapDevice(pa uint64) (int, error) { return k.mapRun(alignDown(pa), PageSize, 1) }

// MapDeviceBlock reserves a contiguous run of slots covering
// [pa, pa+size) with device MAIR attributes.
func (k *KernelSpace) MapDeviceBlock(pa, size uint64) (int, error) { return k.mapRun(pa, size, 1) }

// MapPhysical reserves a contiguous run of slots for normal
// (cacheable) memory.
func (k *KernelSpace) MapPhysical(pa, size uint64) (int, error) { return k.mapRun(pa, size, 0) }

// MapPhysicalNoncacheable reserves a contiguous run of slots for
// normal memory marked non-cacheable.
func (k *KernelSpace) MapPhysicalNoncacheable(pa, size uint64) (int, error) {
	return k.mapRun(pa, size, 2)
}

// SlotPhysAddr returns the physical address a given kernel VA slot is
// currently mapped to, for tests and diagnostics.
func (k *KernelSpace) SlotPhysAddr(slot int) (uint64, bool) {
	g := k.lock.Lock()
	defer g.Unlock()
	slots := *g.Value()
	if slot < 0 || slot >= len(slots) || slots[slot].mair == 0xFF {
		return 0, false
	}
	return slots[slot].pa, true
}
