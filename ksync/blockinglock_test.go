package ksync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBlockingLock_SecondLockerBlocksUntilUnlock(t *testing.T) {
	b := NewBlockingLock()
	b.Lock()

	acquired := make(chan struct{})
	go func() {
		b.Lock()
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second Lock returned while the first holder still held it")
	default:
	}

	b.Unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after Unlock")
	}
}

func TestBlockingLock_SerializesConcurrentCriticalSections(t *testing.T) {
	b := NewBlockingLock()
	counter := 0
	var wg sync.WaitGroup
	const n = 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Lock()
			counter++
			b.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, n, counter)
}
