// Package kernelcore ties together the kernel execution core: thread
// and event scheduling across four cores ([github.com/joeycumines/go-kernelcore/sched]),
// the stackless async task runtime that shares those cores with
// stackful threads ([github.com/joeycumines/go-kernelcore/task]),
// synchronization primitives layered over both
// ([github.com/joeycumines/go-kernelcore/ksync]), SPSC/MPMC ring
// buffers and channels ([github.com/joeycumines/go-kernelcore/ring]),
// the address-space manager ([github.com/joeycumines/go-kernelcore/mm]),
// the process and file-descriptor model
// ([github.com/joeycumines/go-kernelcore/process]), the synchronous
// exception/IRQ/syscall bridge
// ([github.com/joeycumines/go-kernelcore/trap]), and the four-core
// boot sequence that wires all of the above together
// ([github.com/joeycumines/go-kernelcore/boot]).
//
// # Architecture
//
// All four cores run the same loop: [github.com/joeycumines/go-kernelcore/boot.Boot]
// parses a flattened device tree for the usable physical memory range,
// builds a [github.com/joeycumines/go-kernelcore/sched.Scheduler] and
// a [github.com/joeycumines/go-kernelcore/task.Runtime] shared across
// cores, then [github.com/joeycumines/go-kernelcore/boot.Kernel.RunCores]
// starts one [github.com/joeycumines/go-kernelcore/sched.Scheduler.RunCore]
// goroutine per core. Each core's loop pulls one Event at a time —
// resume a thread, poll a task, or run a boxed function — preferring
// realtime-priority events but never preempting whatever is already
// running.
//
// # Thread safety
//
// Every type exported from ksync, sched, task, ring, and mm is safe
// for concurrent use from multiple cores' goroutines; the comments on
// each constructor call out the few exceptions (e.g.
// [github.com/joeycumines/go-kernelcore/sched.CoreInfo], which must
// never escape the closure passed to
// [github.com/joeycumines/go-kernelcore/sched.WithCurrentCore]).
package kernelcore
