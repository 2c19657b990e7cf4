package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	store := NewStoreWithClock(time.Minute, clock)
	store.Set(context.Background(), "k", 1)

	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}
	clock.Advance(time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)
	store.Set(ctx, "standings:league-a:weekly:2026:1", 1)
	store.Set(ctx, "standings:league-a:all-time", 2)
	store.Set(ctx, "standings:league-b:all-time", 3)

	store.DeletePrefix(ctx, "standings:league-a:")

	if _, ok := store.Get(ctx, "standings:league-a:all-time"); ok {
		t.Fatalf("expected league-a entries to be dropped")
	}
	if _, ok := store.Get(ctx, "standings:league-b:all-time"); !ok {
		t.Fatalf("expected league-b entry to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_GetOrLoad_DropsLoadRacingInvalidation(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	_, err := store.GetOrLoad(context.Background(), "standings:l1:all", func(ctx context.Context) (any, error) {
		store.DeletePrefix(ctx, "standings:l1:")
		return "stale", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(context.Background(), "standings:l1:all"); ok {
		t.Fatalf("expected load that raced an invalidation to be discarded")
	}
}
