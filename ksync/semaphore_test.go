package ksync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSemaphore_DownBlocksUntilUp(t *testing.T) {
	sem := NewSemaphore(0)
	done := make(chan struct{})
	go func() {
		sem.Down()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Down returned before Up was called")
	default:
	}

	sem.Up()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Down never returned after Up")
	}
	require.Equal(t, 0, sem.Value())
}

func TestSemaphore_TryDownFailsWhenZero(t *testing.T) {
	sem := NewSemaphore(0)
	require.False(t, sem.TryDown())
	sem.Up()
	require.True(t, sem.TryDown())
	require.False(t, sem.TryDown())
}

// TestSemaphore_ProducerConsumerPreservesCount drives several producers
// and consumers against one semaphore and checks the final value
// accounts for every Up and Down, the bounded-buffer admission-control
// scenario the primitive exists for.
func TestSemaphore_ProducerConsumerPreservesCount(t *testing.T) {
	const slots = 4
	const items = 50

	sem := NewSemaphore(slots)
	var produced, consumed int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < items; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem.Down()
			mu.Lock()
			produced++
			mu.Unlock()
		}()
	}

	for i := 0; i < items; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			mu.Lock()
			consumed++
			mu.Unlock()
			sem.Up()
		}()
	}

	wg.Wait()
	require.Equal(t, items, produced)
	require.Equal(t, items, consumed)
	require.Equal(t, slots, sem.Value())
}
