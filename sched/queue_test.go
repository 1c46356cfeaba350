package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-kernelcore/ksync"
)

func TestQueue_FIFOOrdering(t *testing.T) {
	q := NewQueue(ksync.NoopInterruptController)
	for i := 0; i < 3; i++ {
		q.Push(AsyncTaskEvent(NewTaskID(uint64(i), Normal)))
	}
	require.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		ev, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, uint64(i), ev.TaskID.Index())
	}
	_, ok := q.Pop()
	require.False(t, ok)
}
