package boot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-kernelcore/klog"
	"github.com/joeycumines/go-kernelcore/sched"
	"github.com/joeycumines/go-kernelcore/trap"
)

func TestBoot_BringsUpEveryCoreAndReturnsAReadyKernel(t *testing.T) {
	blob := memoryBlob("memory@0", 0x40000000, 16*1024*1024)

	k, err := Boot(context.Background(), blob, klog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, k.Alloc.Close()) })

	require.Equal(t, uint64(0x40000000), k.Layout.Base)
	require.NotNil(t, k.Scheduler)
	require.NotNil(t, k.Runtime)
	require.NotNil(t, k.Kernel)
	require.NotNil(t, k.Vector)
	require.NotNil(t, k.IRQs)
	require.NotNil(t, k.Syscalls)
}

func TestKernel_HandleTrapDispatchesARegisteredSyscall(t *testing.T) {
	blob := memoryBlob("memory@0", 0x40000000, 16*1024*1024)
	k, err := Boot(context.Background(), blob, klog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, k.Alloc.Close()) })

	var gotThread uint64
	k.Syscalls.Register(7, func(ctx *sched.Context) {
		ctx.GPR[0] = 42
	})

	ran := make(chan struct{})
	th := sched.NewThread(9, true, sched.Normal, func(th *sched.Thread) {
		ctx := &sched.Context{ESR: 7}
		k.HandleTrap(th, trap.Slot(trap.SourceLowerAArch64, trap.CauseSync), ctx)
		gotThread = ctx.GPR[0]
		close(ran)
	})

	go k.Scheduler.RunCore(0, k.Runtime)
	k.Scheduler.AddTask(sched.ScheduleThreadEvent(th))
	<-ran
	require.Equal(t, uint64(42), gotThread)
}

func TestKernel_HandleTrapDispatchesARaisedIRQ(t *testing.T) {
	blob := memoryBlob("memory@0", 0x40000000, 16*1024*1024)
	k, err := Boot(context.Background(), blob, klog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, k.Alloc.Close()) })

	handled := make(chan struct{})
	k.IRQs.Register(3, func() { close(handled) })
	k.RaiseIRQ(3)

	ran := make(chan struct{})
	th := sched.NewThread(10, true, sched.Normal, func(th *sched.Thread) {
		k.HandleTrap(th, trap.Slot(trap.SourceLowerAArch64, trap.CauseIRQ), &sched.Context{})
		close(ran)
	})

	go k.Scheduler.RunCore(1, k.Runtime)
	k.Scheduler.AddTask(sched.ScheduleThreadEvent(th))
	<-ran

	select {
	case <-handled:
	default:
		t.Fatal("raised IRQ was never dispatched to its registered handler")
	}
}

func TestBoot_PropagatesADeviceTreeParseError(t *testing.T) {
	_, err := Boot(context.Background(), []byte{0, 0, 0}, klog.Nop())
	require.ErrorIs(t, err, errTruncated)
}
