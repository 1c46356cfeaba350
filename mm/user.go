package mm

import "github.com/joeycumines/go-kernelcore/ksync"

const (
	lvl2Entries         = 16
	regionSize          = 1 << 21 // 2 MiB, one level-2 entry's span
	lvl3EntriesPerRegion = regionSize / PageSize
)

type lvl2Kind uint8

const (
	lvl2Empty lvl2Kind = iota
	lvl2Huge
	lvl2Table
)

// lvl2Entry is one slot of a 16-entry level-2 table: either empty,
// a "huge page" region pre-mapped in bulk by CreateUserTable, or a
// table descriptor pointing at a lazily allocated run of 512 leaf
// slots covering this entry's 2 MiB region.
type lvl2Entry struct {
	kind    lvl2Kind
	hugePA  uint64
	present []bool
	pages   []uint64
}

// UserAddrSpace is one process's user translation table: the root
// 16-entry level-2 table plus, per region, a lazily materialized
// level-3 leaf table — mirroring UserTranslationTable/UserLeafTable's
// shapes without the literal descriptor bit layout, which has no
// referent once there is no MMU actually walking this structure.
type UserAddrSpace struct {
	lock  *ksync.SpinLock[[]lvl2Entry]
	alloc *PageAlloc
}

func regionIndex(va uint64) int { return int((va >> 21) & 0xF) }
func pageIndex(va uint64) int   { return int((va >> 12) & 0x1FF) }

// NewUserAddrSpace constructs a UserAddrSpace and pre-populates
// level-2 entries 1..7 as huge-page regions mapped to
// [physBase, physBase+7*2MiB), exactly as create_user_table does for a
// freshly forked or exec'd process's initial heap/stack window.
func NewUserAddrSpace(alloc *PageAlloc, physBase uint64) *UserAddrSpace {
	table := make([]lvl2Entry, lvl2Entries)
	for i := 1; i < 8; i++ {
		table[i] = lvl2Entry{kind: lvl2Huge, hugePA: physBase + regionSize*uint64(i-1)}
	}
	return &UserAddrSpace{lock: ksync.NewSpinLock(table), alloc: alloc}
}

// CreateUserAddrSpace allocates the 7x2MiB physical region itself
// before constructing the address space, for the common case of a
// brand new process rather than one inheriting an explicit physBase.
func CreateUserAddrSpace(alloc *PageAlloc) (*UserAddrSpace, error) {
	physBase, err := alloc.AllocRange(regionSize*7, regionSize)
	if err != nil {
		return nil, err
	}
	return NewUserAddrSpace(alloc, physBase), nil
}

// MapPaToVaUser walks (allocating a level-3 table on first use) to
// the leaf slot for va and writes a mapping to pa. Fails with
// HugePagePresent if va falls inside one of the pre-mapped huge
// regions, or LeafTableSpotTaken if the slot is already mapped.
func (u *UserAddrSpace) MapPaToVaUser(pa, va uint64) error {
	idx := regionIndex(va)
	g := u.lock.Lock()
	defer g.Unlock()
	table := *g.Value()
	e := &table[idx]

	switch e.kind {
	case lvl2Huge:
		return MappingError{Kind: HugePagePresent}
	case lvl2Empty:
		e.kind = lvl2Table
		e.present = make([]bool, lvl3EntriesPerRegion)
		e.pages = make([]uint64, lvl3EntriesPerRegion)
	case lvl2Table:
		// already has a level-3 table; fall through to the leaf write.
	}

	pidx := pageIndex(va)
	if e.present[pidx] {
		return MappingError{Kind: LeafTableSpotTaken}
	}
	e.pages[pidx] = alignDown(pa)
	e.present[pidx] = true
	Barrier()
	return nil
}

// UnmapVaUser reverses a single-page mapping and returns the freed
// physical address for the caller to reclaim.
func (u *UserAddrSpace) UnmapVaUser(va uint64) (uint64, error) {
	idx := regionIndex(va)
	g := u.lock.Lock()
	defer g.Unlock()
	table := *g.Value()
	e := &table[idx]

	switch e.kind {
	case lvl2Huge:
		return 0, MappingError{Kind: HugePagePresent}
	case lvl2Empty:
		return 0, MappingError{Kind: TableDescriptorNotValid}
	}

	pidx := pageIndex(va)
	if !e.present[pidx] {
		return 0, MappingError{Kind: LeafTableSpotNotValid}
	}
	pa := e.pages[pidx]
	e.present[pidx] = false
	// dsb ish; tlbi vaae1, va>>12 — no real TLB to invalidate on this
	// host, but the barrier call marks where that sequence belongs.
	Barrier()
	return pa, nil
}

// ClearUserVaddrSpace walks every level-2 entry with a level-3 table,
// collects every still-present leaf's physical address, and resets
// those entries to empty; the pre-mapped huge regions are left as they
// are. The collected frames are handed to the caller: PageAlloc, a
// bump allocator, has no method that takes frames back.
func (u *UserAddrSpace) ClearUserVaddrSpace() []uint64 {
	g := u.lock.Lock()
	defer g.Unlock()
	table := *g.Value()
	var freed []uint64
	for i := range table {
		e := &table[i]
		if e.kind != lvl2Table {
			continue
		}
		for pidx, present := range e.present {
			if present {
				freed = append(freed, e.pages[pidx])
			}
		}
		*e = lvl2Entry{}
	}
	return freed
}

// Lookup returns the physical address va currently maps to, if any,
// for tests and for process.Process.Fork, which copies each mapped
// page it finds.
func (u *UserAddrSpace) Lookup(va uint64) (uint64, bool) {
	idx := regionIndex(va)
	g := u.lock.Lock()
	defer g.Unlock()
	table := *g.Value()
	e := &table[idx]
	switch e.kind {
	case lvl2Huge:
		return e.hugePA + va%regionSize, true
	case lvl2Table:
		pidx := pageIndex(va)
		if e.present[pidx] {
			return e.pages[pidx] + va%PageSize, true
		}
	}
	return 0, false
}
