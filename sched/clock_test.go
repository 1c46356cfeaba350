package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock_TicksAdvanceWithFrequency(t *testing.T) {
	c := NewClock(1000) // 1000 ticks/sec for a test-friendly scale
	require.Equal(t, uint64(1000), c.Freq())

	start := c.Ticks()
	time.Sleep(20 * time.Millisecond)
	end := c.Ticks()
	require.Greater(t, end, start)
}

func TestClock_SpinSleepBlocksAtLeastTheRequestedDuration(t *testing.T) {
	c := DefaultClock()
	before := time.Now()
	c.SpinSleep(15 * time.Millisecond)
	require.GreaterOrEqual(t, time.Since(before), 15*time.Millisecond)
}

func TestClock_SpinSleepUntilReturnsImmediatelyForAPastDeadline(t *testing.T) {
	c := DefaultClock()
	before := time.Now()
	c.SpinSleepUntil(-time.Hour)
	require.Less(t, time.Since(before), 100*time.Millisecond)
}
