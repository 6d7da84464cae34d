package queue

import (
	"errors"
	"sync"
	"testing"
)

func TestInflightSetRefusesSameEndpoint(t *testing.T) {
	q := NewInflightSet(4)

	if !q.TryAcquire("mysql-1") {
		t.Fatalf("expected first acquire to succeed")
	}
	if err := q.Acquire("mysql-1"); !errors.Is(err, ErrAlreadyInflight) {
		t.Fatalf("expected ErrAlreadyInflight, got %v", err)
	}
	if !q.TryAcquire("pg-1") {
		t.Fatalf("distinct endpoint should not be blocked")
	}

	q.Release("mysql-1")
	if !q.TryAcquire("mysql-1") {
		t.Fatalf("expected acquire to succeed after release")
	}
	if q.Len() != 2 {
		t.Fatalf("expected 2 in flight, got %d", q.Len())
	}
}

func TestInflightSetCapacity(t *testing.T) {
	q := NewInflightSet(2)

	if !q.TryAcquire("a") || !q.TryAcquire("b") {
		t.Fatalf("expected acquire within capacity")
	}
	if err := q.Acquire("c"); !errors.Is(err, ErrInflightFull) {
		t.Fatalf("expected ErrInflightFull, got %v", err)
	}

	q.Release("a")
	if !q.TryAcquire("c") {
		t.Fatalf("expected acquire to succeed after release")
	}
	if q.Len() != 2 {
		t.Fatalf("expected b and c to be held, got %d", q.Len())
	}
	if !errors.Is(q.Acquire("b"), ErrAlreadyInflight) {
		t.Fatalf("expected b to still be held")
	}
}

func TestInflightSetConcurrentAcquire(t *testing.T) {
	q := NewInflightSet(0)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.TryAcquire("same") {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}
}
