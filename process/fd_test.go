package process

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFD struct {
	id     int
	closed bool
}

func (f *fakeFD) Close() error          { f.closed = true; return nil }
func (f *fakeFD) Clone() FileDescriptor { return &fakeFD{id: f.id} }

func TestFileDescriptorList_InsertClaimsLowestFreeSlot(t *testing.T) {
	var l FileDescriptorList

	require.Equal(t, 0, l.Insert(&fakeFD{id: 0}))
	require.Equal(t, 1, l.Insert(&fakeFD{id: 1}))
	require.Equal(t, 2, l.Insert(&fakeFD{id: 2}))

	l.Remove(1)
	require.Equal(t, 1, l.Insert(&fakeFD{id: 3}), "insert must reuse the lowest freed slot, not append")
}

func TestFileDescriptorList_GetOutOfRangeReturnsNil(t *testing.T) {
	var l FileDescriptorList
	require.Nil(t, l.Get(0))
	require.Nil(t, l.Get(-1))
}

func TestFileDescriptorList_SetGrowsTableAndReturnsPrevious(t *testing.T) {
	var l FileDescriptorList
	require.Nil(t, l.Set(3, &fakeFD{id: 0}))
	require.NotNil(t, l.Get(3))

	prev := l.Set(3, &fakeFD{id: 1})
	require.Equal(t, 0, prev.(*fakeFD).id)
}

func TestFileDescriptorList_RemoveClearsSlotAndReturnsDescriptor(t *testing.T) {
	var l FileDescriptorList
	idx := l.Insert(&fakeFD{id: 7})

	removed := l.Remove(idx)
	require.Equal(t, 7, removed.(*fakeFD).id)
	require.Nil(t, l.Get(idx))
}

func TestFileDescriptorList_CloneDeepCopiesEveryOccupiedSlot(t *testing.T) {
	var l FileDescriptorList
	l.Insert(&fakeFD{id: 1})
	l.Insert(&fakeFD{id: 2})

	clone := l.Clone()
	require.NotSame(t, l.Get(0), clone.Get(0))
	require.Equal(t, 1, clone.Get(0).(*fakeFD).id)

	// Mutating the original through its own slot must not affect the
	// clone's independently allocated descriptor.
	l.Get(0).(*fakeFD).id = 99
	require.Equal(t, 1, clone.Get(0).(*fakeFD).id)
}
