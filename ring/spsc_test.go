package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpsc_FIFOOrdering(t *testing.T) {
	r := NewSpsc[int](4)
	for i := 0; i < 4; i++ {
		require.True(t, r.TrySend(i))
	}
	require.False(t, r.TrySend(99), "ring should report full at capacity")

	for i := 0; i < 4; i++ {
		v, ok := r.TryRecv()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := r.TryRecv()
	require.False(t, ok, "ring should report empty once drained")
}

func TestSpsc_PanicsOnNonPowerOfTwoCapacity(t *testing.T) {
	require.Panics(t, func() { NewSpsc[int](3) })
}

func TestSpscOverwriting_OverwritesOldestWhenFull(t *testing.T) {
	// Capacity 4 holds at most 3 live elements (full is head==tail+N-1);
	// sending 5 values evicts the two oldest, leaving the last three.
	r := NewSpscOverwriting[int](4)
	for i := 0; i < 5; i++ {
		r.SendOverwrite(i)
	}

	var got []int
	for {
		v, ok := r.TryRecv()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{2, 3, 4}, got)
}
