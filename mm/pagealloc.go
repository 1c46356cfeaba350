// Package mm is the address-space manager: the kernel's own global
// translation table plus one per-process user table, grounded on
// vmm.rs and palloc.rs. There is no literal AArch64 MMU on this host,
// so "physical memory" is a single anonymous mmap arena obtained via
// golang.org/x/sys/unix and "physical addresses" are offsets into that
// arena rather than translation descriptor bits — AP/execute-never
// bits are not modelled at all, neither at the host-memory level nor
// in the leaf/table descriptor bookkeeping, but the same
// mapping-failure taxonomy and ordering invariants (a leaf and a table
// descriptor never alias one entry, a write is followed by a barrier
// before the mapping is used) apply regardless of what backs the
// frames.
package mm

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// PageSize is the base AArch64 4 KiB granule.
const PageSize = 0x1000

// PageAlloc is a bump-style physical frame allocator, ported from
// PageAllocator::alloc_range: a lock-free compare-and-swap advances
// the allocation pointer, so concurrent allocators on different cores
// never observe a torn bump.
type PageAlloc struct {
	arena []byte
	base  uint64
	cur   atomic.Uint64
	max   uint64
}

// InitPhysicalAlloc reserves an anonymous mmap arena of max-start
// bytes and initializes the bump allocator over the physical address
// range [start, max).
func InitPhysicalAlloc(start, max uint64) (*PageAlloc, error) {
	size := max - start
	arena, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	a := &PageAlloc{arena: arena, base: start, max: max}
	a.cur.Store(start)
	return a, nil
}

// Close releases the backing arena.
func (a *PageAlloc) Close() error { return unix.Munmap(a.arena) }

// nextMultipleOf rounds n up to the nearest multiple of m, expressed
// in terms of alignDownTo's generic truncating division.
func nextMultipleOf(n, m uint64) uint64 {
	if n%m == 0 {
		return n
	}
	return alignDownTo(n+m, m)
}

// AllocRange reserves size bytes aligned to at least PageSize (align
// is raised to PageSize if smaller), returning the physical base
// address of the reserved range.
func (a *PageAlloc) AllocRange(size, align uint64) (uint64, error) {
	if align < PageSize {
		align = PageSize
	}
	for {
		cur := a.cur.Load()
		start := nextMultipleOf(cur, align)
		next := start + size
		if next > a.max {
			return 0, MappingError{Kind: RequestedSizeUnavailable}
		}
		if a.cur.CompareAndSwap(cur, next) {
			return start, nil
		}
	}
}

// AllocFrame reserves a single PageSize-aligned frame, e.g. the frame
// process.Process.Fork copies a parent's page into. The level-3 tables
// UserAddrSpace builds are ordinary Go slices, not frames from here.
func (a *PageAlloc) AllocFrame() (uint64, error) {
	return a.AllocRange(PageSize, PageSize)
}

// Bytes returns the arena slice backing the physical range
// [pa, pa+size), for callers that need to read or write simulated
// physical memory directly (e.g. zeroing a freshly allocated frame).
func (a *PageAlloc) Bytes(pa, size uint64) []byte {
	off := pa - a.base
	return a.arena[off : off+size]
}

// Barrier stands in for "dsb ish": on real hardware it drains the
// store buffer before the new mapping can be observed by the MMU. Go's
// memory model already orders the spinlock-guarded map write before
// any later unlock-happens-before read, so there is nothing left for
// this to physically do — it exists as a named call site matching
// every mapping write in vmm.rs, so the invariant "every write is
// followed by a barrier" stays visible in the code, not just the prose.
func Barrier() {}
