package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	var km KeyedMutex
	var inside atomic.Int32
	var maxInside atomic.Int32

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(context.Background(), "card-1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Fatalf("unexpected concurrent holders: got=%d want=1", got)
	}
	if got := km.size(); got != 0 {
		t.Fatalf("expected idle keys to be released, got=%d", got)
	}
}

func TestKeyedMutex_HonoursContext(t *testing.T) {
	t.Parallel()

	var km KeyedMutex
	unlock, err := km.Lock(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := km.Lock(ctx, "card-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	other, err := km.Lock(context.Background(), "card-2")
	if err != nil {
		t.Fatalf("independent key should not block: %v", err)
	}
	other()
}
