package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
	"github.com/google/uuid"
)

// Интеграционный тест: нужен живой Redis в SPACEGROW_TEST_REDIS_URL
func TestClientAgainstRedis(t *testing.T) {
	url := os.Getenv("SPACEGROW_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SPACEGROW_TEST_REDIS_URL is not set")
	}

	cfg := &Config{URL: url}
	ctx := context.Background()
	conn, err := cfg.NewConnection(ctx)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	c := NewClient(conn, "spacegrow-test:"+uuid.NewString()+":")
	defer c.Close()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get missing err = %v, want ErrMiss", err)
	}
	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := c.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get after delete err = %v", err)
	}
}
