package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-kernelcore/ksync"
)

func TestWithCurrentCore_HandsBackTheRequestedCoresInfo(t *testing.T) {
	var got *CoreInfo
	WithCurrentCore(2, func(c *CoreInfo) { got = c })
	require.Same(t, AllCores[2], got)
}

func TestCoreInfo_CurrentThreadReflectsRunCoreInstallation(t *testing.T) {
	core := AllCores[3]
	require.Nil(t, core.CurrentThread())

	s := NewScheduler(ksync.NoopInterruptController, nil)
	installed := make(chan *Thread, 1)
	th := NewThread(99, true, Normal, func(th *Thread) { installed <- core.CurrentThread() })
	go s.RunCore(3, nil)
	s.AddTask(ScheduleThreadEvent(th))

	// While th runs, core 3 reports it as current; RunCore clears
	// currentThread again once the thread runs to completion and
	// control returns to the event loop.
	select {
	case got := <-installed:
		require.Same(t, th, got)
	case <-time.After(time.Second):
		t.Fatal("core 3 never ran the scheduled thread")
	}
	require.Eventually(t, func() bool { return core.CurrentThread() == nil }, time.Second, time.Millisecond)
}
