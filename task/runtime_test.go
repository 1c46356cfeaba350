package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-kernelcore/ksync"
	"github.com/joeycumines/go-kernelcore/sched"
)

func TestRuntime_PollRunsToCompletionAndRemovesTask(t *testing.T) {
	s := sched.NewScheduler(ksync.NoopInterruptController, nil)
	rt := NewRuntime(s)

	id := rt.Spawn(Normal, FutureFunc(func(w *Waker) bool { return true }))
	require.Equal(t, 1, rt.Len())

	ev := s.WaitForTask()
	require.Equal(t, sched.EventAsyncTask, ev.Kind)
	require.Equal(t, id, ev.TaskID)
	rt.Poll(ev.TaskID)

	require.Equal(t, 0, rt.Len(), "a future that resolves on first poll must have its task slot removed")
}

// TestRuntime_WakerCoalescing exercises the take/ret "woken while
// running" path: extra pokes that arrive for a task already out being
// polled (here, reentrant Poll calls made from inside the future
// itself, standing in for two cores both observing the same event)
// must not hand the task out a second time, and must coalesce into
// exactly one re-enqueue once the in-flight poll returns.
func TestRuntime_WakerCoalescing(t *testing.T) {
	s := sched.NewScheduler(ksync.NoopInterruptController, nil)
	rt := NewRuntime(s)

	var id sched.TaskID
	polls := 0
	id = rt.Spawn(Normal, FutureFunc(func(w *Waker) bool {
		polls++
		if polls == 1 {
			rt.Poll(id)
			rt.Poll(id)
			return false
		}
		return true
	}))

	ev := s.WaitForTask()
	require.Equal(t, id, ev.TaskID)
	rt.Poll(ev.TaskID) // first real poll; two reentrant pokes happen inside it

	require.Equal(t, 1, polls, "a task already running must not be handed out a second time")

	ev = s.WaitForTask()
	require.Equal(t, sched.EventAsyncTask, ev.Kind)
	require.Equal(t, id, ev.TaskID)

	sentinel := sched.FunctionEvent(sched.Normal, func() {})
	s.AddTask(sentinel)
	next := s.WaitForTask()
	require.Equal(t, sched.EventFunction, next.Kind, "two pokes while running must coalesce into one re-poll, not two")

	rt.Poll(ev.TaskID) // polls == 2, resolves
	require.Equal(t, 2, polls)
	require.Equal(t, 0, rt.Len())
}

func TestRuntime_PollRecoversAPanickingFutureAndRemovesItsTask(t *testing.T) {
	s := sched.NewScheduler(ksync.NoopInterruptController, nil)
	rt := NewRuntime(s)

	id := rt.Spawn(Normal, FutureFunc(func(w *Waker) bool {
		panic("future exploded")
	}))
	require.Equal(t, 1, rt.Len())

	ev := s.WaitForTask()
	require.NotPanics(t, func() { rt.Poll(ev.TaskID) })

	require.Equal(t, 0, rt.Len(), "a future that panics must still have its task slot removed")
}

func TestTaskID_PackingRoundTrips(t *testing.T) {
	id := sched.NewTaskID(1234, sched.Realtime)
	require.Equal(t, uint64(1234), id.Index())
	require.Equal(t, sched.Realtime, id.Priority())
}

func TestTaskID_PanicsWhenIDOverflows56Bits(t *testing.T) {
	require.Panics(t, func() {
		sched.NewTaskID(uint64(1)<<56, sched.Normal)
	})
}
