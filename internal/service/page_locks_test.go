package service

import (
	"sync"
	"testing"
	"time"
)

func TestPageLocksSerializeSameKey(t *testing.T) {
	locks := NewPageLocks()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("page")
			defer unlock()

			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if overlap {
		t.Fatal("expected holders of the same key to be serialized")
	}
	if locks.size() != 0 {
		t.Fatalf("expected lock table to be empty, got %d", locks.size())
	}
}

func TestPageLocksOppositeOrderDoesNotDeadlock(t *testing.T) {
	locks := NewPageLocks()
	done := make(chan struct{})

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				locks.Lock("a", "b")()
			}()
			go func() {
				defer wg.Done()
				locks.Lock("b", "a", "b")()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("locking pairs in opposite order deadlocked")
	}
}
