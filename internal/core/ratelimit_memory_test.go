package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryRateLimitStore_FixedWindow(t *testing.T) {
	store := NewMemoryRateLimitStore(0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := store.IncrementAndCheck(ctx, "client", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if res.Remaining != 3-i {
			t.Errorf("request %d: Remaining = %d, want %d", i, res.Remaining, 3-i)
		}
		if !res.ResetAt.Equal(now.Add(time.Minute)) {
			t.Errorf("ResetAt = %v", res.ResetAt)
		}
	}

	res, _ := store.IncrementAndCheck(ctx, "client", 3, time.Minute)
	if res.Allowed || res.Remaining != 0 {
		t.Errorf("fourth request should be rejected, got %+v", res)
	}

	other, _ := store.IncrementAndCheck(ctx, "other", 3, time.Minute)
	if !other.Allowed {
		t.Error("keys must be counted independently")
	}

	now = now.Add(time.Minute)
	res, _ = store.IncrementAndCheck(ctx, "client", 3, time.Minute)
	if !res.Allowed || res.Remaining != 2 {
		t.Errorf("new window should reset the count, got %+v", res)
	}
}

func TestMemoryRateLimitStore_Sweep(t *testing.T) {
	store := NewMemoryRateLimitStore(0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.IncrementAndCheck(ctx, "a", 1, time.Minute)
	now = now.Add(30 * time.Second)
	store.IncrementAndCheck(ctx, "b", 1, time.Minute)
	now = now.Add(45 * time.Second)

	if dropped := store.Sweep(); dropped != 1 {
		t.Errorf("Sweep() dropped %d, want 1", dropped)
	}
	if _, ok := store.windows["b"]; !ok {
		t.Error("active window must survive a sweep")
	}
}

func TestMemoryRateLimitStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryRateLimitStore(0)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	allowed := make(chan bool, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := store.IncrementAndCheck(ctx, "shared", 10, time.Hour)
			allowed <- res.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 10 {
		t.Errorf("allowed %d requests, want exactly 10", count)
	}
}

func TestMemoryRateLimitStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryRateLimitStore(time.Millisecond)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
