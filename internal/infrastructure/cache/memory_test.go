package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prelovedguru/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{"store and retrieve text", "catalog:shop", []byte("snapshot"), time.Minute},
		{"store and retrieve json", "catalog:retail", []byte(`{"products":[]}`), time.Minute},
		{"store empty value", "catalog:profile", []byte{}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
	exists, err := cache.Exists(ctx, "short")
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v, want false, nil", exists, err)
	}
}

func TestMemoryCache_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	value := []byte("abc")
	_ = cache.Set(ctx, "k", value, time.Minute)
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed to %q", again)
	}
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), time.Minute)

	exists, _ := cache.Exists(ctx, "k")
	if !exists {
		t.Error("Exists() = false before delete")
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, _ = cache.Exists(ctx, "k")
	if exists {
		t.Error("Exists() = true after delete")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "old", []byte("v"), time.Millisecond)
	_ = cache.Set(ctx, "fresh", []byte("v"), time.Hour)

	cache.removeExpired(time.Now().Add(time.Second))

	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", cache.Size())
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	cache.Close()
	cache.Close()
}

func TestMemoryCache_Concurrency(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			_ = cache.Set(ctx, key, []byte("v"), time.Minute)
			_, _ = cache.Get(ctx, key)
			_, _ = cache.Exists(ctx, key)
		}(i)
	}
	wg.Wait()

	if cache.Size() != 5 {
		t.Errorf("Size() = %d, want 5", cache.Size())
	}
}
