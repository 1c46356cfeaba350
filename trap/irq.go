package trap

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-kernelcore/klog"
	"github.com/joeycumines/go-kernelcore/sched"
)

// IRQHandler acknowledges and services one pending interrupt source.
// Level-triggered sources must acknowledge themselves before
// returning, exactly as the original requires.
type IRQHandler func()

const irqSlots = 32

// IRQTable is the core-local handler table: a fixed array of 32
// atomic slots, one per bit of the pending-source bitmask, read with
// relaxed load and written with release store — Go's atomic.Pointer
// gives both for free.
type IRQTable struct {
	handlers [irqSlots]atomic.Pointer[IRQHandler]
	unhandled *catrate.Limiter
	log       *klog.Logger
}

// NewIRQTable constructs an IRQTable whose default "not handled" slot
// always panics; the accompanying warning log is rate-limited so a
// storm of spurious bits on one unregistered line doesn't also storm
// the log.
func NewIRQTable(log *klog.Logger) *IRQTable {
	if log == nil {
		log = klog.Nop()
	}
	return &IRQTable{
		unhandled: catrate.NewLimiter(map[time.Duration]int{time.Second: 1}),
		log:       log,
	}
}

// Register installs fn at irq, replacing any previous handler.
func (t *IRQTable) Register(irq int, fn IRQHandler) {
	t.handlers[irq].Store(&fn)
}

// Unregister clears irq's slot, reverting it to "not handled".
func (t *IRQTable) Unregister(irq int) {
	t.handlers[irq].Store(nil)
}

// Dispatch extracts one-hot bits from pending (lowest bit first,
// matching bit order in the source) and calls each registered
// handler in turn. A set bit with no registered handler always
// panics, since a trap into an unregistered source means the
// interrupt controller configuration itself is wrong; catrate only
// rate-limits the warning logged alongside that panic, so a storm on
// one line doesn't also storm the log.
func (t *IRQTable) Dispatch(pending uint32) {
	for pending != 0 {
		bit := pending & -pending
		irq := trailingZeros32(bit)
		pending &^= bit

		h := t.handlers[irq].Load()
		if h == nil {
			t.notHandled(irq)
			continue
		}
		(*h)()
	}
}

func (t *IRQTable) notHandled(irq int) {
	if _, allowed := t.unhandled.Allow(irq); allowed {
		t.log.Warning().Int("irq", irq).Log("unhandled interrupt source")
	}
	panic(fmt.Sprintf("trap: irq %d fired with no handler registered", irq))
}

func trailingZeros32(x uint32) int {
	if x == 0 {
		return 32
	}
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

// HandleIRQ is the Handler installed at the IRQ vector slot: it reads
// the pending bitmask (via readPending, supplied by the board-specific
// interrupt-controller shim) and dispatches through table.
func HandleIRQ(table *IRQTable, readPending func() uint32) Handler {
	return func(*sched.Context) *DescheduleAction {
		table.Dispatch(readPending())
		return nil
	}
}
