package mm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageAlloc_AllocFrameReturnsDistinctPageAlignedAddresses(t *testing.T) {
	a := newTestAlloc(t)

	p1, err := a.AllocFrame()
	require.NoError(t, err)
	p2, err := a.AllocFrame()
	require.NoError(t, err)

	require.Zero(t, p1%PageSize)
	require.Zero(t, p2%PageSize)
	require.NotEqual(t, p1, p2)
	require.Equal(t, p1+PageSize, p2, "a bump allocator must hand out frames back to back with no gaps")
}

func TestPageAlloc_AllocRangeFailsOnceArenaIsExhausted(t *testing.T) {
	a, err := InitPhysicalAlloc(0, 3*PageSize)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	_, err = a.AllocRange(2*PageSize, PageSize)
	require.NoError(t, err)

	_, err = a.AllocRange(2*PageSize, PageSize)
	require.Equal(t, MappingError{Kind: RequestedSizeUnavailable}, err)
}

func TestPageAlloc_AllocRangeRespectsAlignment(t *testing.T) {
	a := newTestAlloc(t)

	_, err := a.AllocFrame() // nudge the bump pointer off a large alignment boundary
	require.NoError(t, err)

	addr, err := a.AllocRange(PageSize, 16*PageSize)
	require.NoError(t, err)
	require.Zero(t, addr%(16*PageSize))
}

func TestPageAlloc_BytesWritesAreVisibleAtTheSamePhysAddr(t *testing.T) {
	a := newTestAlloc(t)
	pa, err := a.AllocFrame()
	require.NoError(t, err)

	copy(a.Bytes(pa, 5), []byte("hello"))
	require.Equal(t, []byte("hello"), a.Bytes(pa, 5))
}
