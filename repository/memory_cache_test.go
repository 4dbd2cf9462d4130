package repository

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {

	cache := NewMemoryCache()
	ctx := context.Background()

	if _, ok, _ := cache.Get(ctx, "missing"); ok {
		t.Errorf("expected a miss for an unknown key")
	}

	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok || got != "v" {
		t.Errorf("expected hit with v, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {

	cache := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cache.Set(ctx, "short", "v", time.Second)
	_ = cache.Set(ctx, "forever", "v", 0)

	now = now.Add(2 * time.Second)

	if _, ok, _ := cache.Get(ctx, "short"); ok {
		t.Errorf("expected expired entry to miss")
	}
	if cache.Len() != 1 {
		t.Errorf("expected expired entry to be evicted on read, %d keys left", cache.Len())
	}
	if _, ok, _ := cache.Get(ctx, "forever"); !ok {
		t.Errorf("zero ttl must not expire")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {

	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", "old", 0)
	_ = cache.Set(ctx, "k", "new", 0)

	if got, _, _ := cache.Get(ctx, "k"); got != "new" {
		t.Errorf("expected new, got %q", got)
	}
}
