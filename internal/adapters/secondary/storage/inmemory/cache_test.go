package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
)

func TestCacheTTL(t *testing.T) {
	c := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "report:c1", "v1", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", "v2", 0); err != nil {
		t.Fatal(err)
	}

	if got, err := c.Get(ctx, "report:c1"); err != nil || got != "v1" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	now = now.Add(time.Minute)
	if _, err := c.Get(ctx, "report:c1"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("expired Get err = %v, want ErrMiss", err)
	}
	if got, err := c.Get(ctx, "forever"); err != nil || got != "v2" {
		t.Fatalf("Get without ttl = %q, %v", got, err)
	}
}

func TestCacheDeleteAndSweep(t *testing.T) {
	c := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "a", "1", time.Second)
	_ = c.Set(ctx, "b", "2", time.Hour)
	_ = c.Set(ctx, "c", "3", time.Hour)

	if err := c.Delete(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "c"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("deleted key err = %v", err)
	}

	now = now.Add(time.Minute)
	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}
