// Package process implements the kernel's process model: a user
// address space, an FD table, credentials, and a one-shot exit-status
// handoff, ported from process.rs.
package process

import (
	"sync/atomic"

	"github.com/joeycumines/go-kernelcore/ksync"
	"github.com/joeycumines/go-kernelcore/mm"
)

// ExitStatus is the value a process's exit_code OnceCell is Set to,
// for any waiting parent to Get.
type ExitStatus struct {
	Code uint32
}

var nextPID atomic.Uint64

// Process owns a user address space, an FD table, an optional root
// directory descriptor, a credential block, and a one-shot exit-status
// cell a parent can block on.
type Process struct {
	PID uint64

	mem        *ksync.SpinLock[*mm.UserAddrSpace]
	Root       FileDescriptor
	fds        *ksync.SpinLock[FileDescriptorList]
	ExitCode   *ksync.OnceCell[ExitStatus]
	credential *ksync.SpinLock[Credential]
}

// New constructs a fresh Process over addrSpace with a zeroed
// credential block and an empty FD table.
func New(addrSpace *mm.UserAddrSpace) *Process {
	return &Process{
		PID:        nextPID.Add(1),
		mem:        ksync.NewSpinLock(addrSpace),
		fds:        ksync.NewSpinLock(FileDescriptorList{}),
		ExitCode:   ksync.NewOnceCell[ExitStatus](),
		credential: ksync.NewSpinLock(Credential{}),
	}
}

// Mem runs fn with exclusive access to the process's user address
// space.
func (p *Process) Mem(fn func(*mm.UserAddrSpace)) {
	g := p.mem.Lock()
	defer g.Unlock()
	fn(*g.Value())
}

// Credential runs fn with exclusive access to the process's
// credential block, returning whatever fn returns.
func (p *Process) Credential(fn func(*Credential) error) error {
	g := p.credential.Lock()
	defer g.Unlock()
	return fn(g.Value())
}

// Fds runs fn with exclusive access to the process's FD table.
func (p *Process) Fds(fn func(*FileDescriptorList)) {
	g := p.fds.Lock()
	defer g.Unlock()
	fn(g.Value())
}

// Fork deep-copies the parent's mappings at the VAs listed in liveVAs
// (a listed VA with no mapping is skipped; unlisted VAs are not
// copied), clones every
// open file descriptor, and copies the credential block and root
// descriptor into a new, independent Process with its own PID and
// exit-status cell. The caller supplies a fresh, unmapped
// UserAddrSpace plus the allocator backing it so Fork can re-create
// the parent's mappings in the child's table — mirroring
// UserAddrSpace::fork's "allocate new frames, copy the bytes, map
// them at the same VAs" approach rather than attempting
// copy-on-write, which the spec does not mandate.
func (p *Process) Fork(childSpace *mm.UserAddrSpace, alloc *mm.PageAlloc, liveVAs []uint64) (*Process, error) {
	mg := p.mem.Lock()
	parentSpace := *mg.Value()
	for _, va := range liveVAs {
		pa, ok := parentSpace.Lookup(va)
		if !ok {
			continue
		}
		childPA, err := alloc.AllocFrame()
		if err != nil {
			mg.Unlock()
			return nil, err
		}
		copy(alloc.Bytes(childPA, mm.PageSize), alloc.Bytes(pa, mm.PageSize))
		if err := childSpace.MapPaToVaUser(childPA, va); err != nil {
			mg.Unlock()
			return nil, err
		}
	}
	mg.Unlock()

	child := New(childSpace)
	child.Root = p.Root

	fg := p.fds.Lock()
	child.fds = ksync.NewSpinLock(fg.Value().Clone())
	fg.Unlock()

	cg := p.credential.Lock()
	childCred := *cg.Value()
	cg.Unlock()
	child.credential = ksync.NewSpinLock(childCred)

	return child, nil
}
