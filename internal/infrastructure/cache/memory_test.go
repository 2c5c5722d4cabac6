package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collabmatch/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	t.Run("store and retrieve string", func(t *testing.T) {
		if err := cache.Set(ctx, "key-1", "value", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "key-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "value" {
			t.Errorf("Get() = %v, want value", got)
		}
	})

	t.Run("stored values keep their type", func(t *testing.T) {
		result := &domain.VerificationResult{Status: domain.StatusVerified, Score: 100}
		if err := cache.Set(ctx, "key-2", result, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "key-2")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		cached, ok := got.(*domain.VerificationResult)
		if !ok {
			t.Fatalf("Get() type = %T, want *domain.VerificationResult", got)
		}
		if cached.Score != 100 {
			t.Errorf("cached.Score = %d, want 100", cached.Score)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := cache.Get(ctx, "never-set")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("expired key misses", func(t *testing.T) {
		if err := cache.Set(ctx, "key-3", "expires", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		_, err := cache.Get(ctx, "key-3")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss after expiry", err)
		}
	})
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := cache.Get(ctx, "key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
	}

	// Deleting an absent key is a no-op
	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if cache.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", cache.Size())
	}

	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after Clear", cache.Size())
	}
	if _, err := cache.Get(ctx, "a"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after Clear() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				cache.Set(ctx, "shared", j, time.Minute)
				cache.Get(ctx, "shared")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	if _, err := cache.Get(ctx, "shared"); err != nil {
		t.Errorf("Get() after concurrent writes error = %v", err)
	}
}
