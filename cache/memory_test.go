package cache

import (
	"context"
	"slices"
	"sync"
	"testing"
)

func TestMemoryCache_GetSetDelete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if val, ok := cache.Get(ctx, "db.password"); ok || val != "" {
		t.Fatalf("Get on empty cache = %q, %v", val, ok)
	}

	if err := cache.Set(ctx, "db.password", "s3cret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := cache.Get(ctx, "db.password"); !ok || got != "s3cret" {
		t.Fatalf("Get after Set = %q, %v", got, ok)
	}

	if err := cache.Delete(ctx, "db.password"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := cache.Get(ctx, "db.password"); ok {
		t.Error("Get after Delete should return ok=false")
	}

	// Delete is idempotent
	if err := cache.Delete(ctx, "nonexistent"); err != nil {
		t.Errorf("Delete on non-existent key should not error, got: %v", err)
	}
}

func TestMemoryCache_EmptyValueIsAHit(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "api.token", ""); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := cache.Get(ctx, "api.token"); !ok || got != "" {
		t.Fatalf("Get = %q, %v, want empty hit", got, ok)
	}
}

func TestMemoryCache_SetRejectsInvalidKey(t *testing.T) {
	cache := NewMemoryCache()

	if err := cache.Set(context.Background(), " ", "v"); err != ErrInvalidKey {
		t.Fatalf("Set() error = %v, want ErrInvalidKey", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", cache.Len())
	}
}

func TestMemoryCache_NilSet(t *testing.T) {
	var cache *MemoryCache
	if err := cache.Set(context.Background(), "k", "v"); err != ErrNilCache {
		t.Fatalf("Set() on nil cache = %v, want ErrNilCache", err)
	}
}

func TestMemoryCache_ClearAndKeys(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "b.token", "2")
	_ = cache.Set(ctx, "a.secret", "1")

	if got := cache.Keys(); !slices.Equal(got, []string{"a.secret", "b.token"}) {
		t.Fatalf("Keys() = %v", got)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", cache.Len())
	}
	if _, ok := cache.Get(ctx, "a.secret"); ok {
		t.Fatal("Get after Clear should miss")
	}
}

func TestMemoryCache_SetOverwrite(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "db.password", "value1")
	_ = cache.Set(ctx, "db.password", "value2")

	if got, _ := cache.Get(ctx, "db.password"); got != "value2" {
		t.Errorf("Get returned %q, want value2", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	const numGoroutines = 64
	const opsPerGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				switch j % 4 {
				case 0:
					_ = cache.Set(ctx, "db.password", "same-derived-value")
				case 1:
					if v, ok := cache.Get(ctx, "db.password"); ok && v != "same-derived-value" {
						t.Errorf("unexpected value %q", v)
					}
				case 2:
					_ = cache.Delete(ctx, "db.password")
				case 3:
					if j%100 == 3 {
						_ = cache.Clear(ctx)
					}
				}
			}
		}()
	}

	wg.Wait()
}
