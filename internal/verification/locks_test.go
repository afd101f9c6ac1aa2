package verification

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("claim-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()

	unlock := km.Lock("claim-1")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}

func TestLockAllDeduplicates(t *testing.T) {
	km := newKeyedMutex()
	id := uuid.New()

	// Same id twice must not deadlock against itself.
	done := make(chan struct{})
	go func() {
		unlock := km.LockAll(id, id)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LockAll deadlocked on duplicate ids")
	}
}

func TestLockAllOppositeOrders(t *testing.T) {
	km := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	// Two goroutines locking the same pair in opposite argument order
	// must both complete; the sorted acquisition order prevents the
	// classic AB/BA deadlock.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := km.LockAll(a, b)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := km.LockAll(b, a)
			unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("LockAll deadlocked on opposite orders")
	}
}
