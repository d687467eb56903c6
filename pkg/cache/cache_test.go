package cache

import (
	"context"
	"testing"
	"time"
)

func TestGoCache(t *testing.T) {
	c := NewGoCache(LocalConfig{
		DefaultExpiration: 5 * time.Minute,
		CleanupInterval:   10 * time.Minute,
	})
	defer c.Close()

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
			t.Errorf("failed to set cache: %v", err)
		}
		if got, ok := c.Get(ctx, "k"); !ok {
			t.Error("cache value not found")
		} else if got != "v" {
			t.Errorf("expected v, got %v", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", 1, time.Minute)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("failed to delete: %v", err)
		}
		if _, ok := c.Get(ctx, "gone"); ok {
			t.Error("deleted key still present")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		_ = c.Set(ctx, "a", 1, time.Minute)
		_ = c.Set(ctx, "b", 2, time.Minute)
		if err := c.Clear(ctx); err != nil {
			t.Errorf("failed to clear: %v", err)
		}
		if _, ok := c.Get(ctx, "a"); ok {
			t.Error("cache not cleared")
		}
	})
}

func TestFactoryUnknownType(t *testing.T) {
	if _, err := NewCache(Config{Type: "memcached"}); err == nil {
		t.Error("expected error for unsupported cache type")
	}
}
