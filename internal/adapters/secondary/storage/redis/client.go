package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
	"github.com/redis/go-redis/v9"
)

// Client реализует cache.Cache поверх Redis; ключи пишутся с префиксом приложения
type Client struct {
	client *redis.Client
	prefix string
}

// NewClient создаёт кэш поверх готового подключения
func NewClient(client *redis.Client, prefix string) cache.Cache {
	return &Client{
		client: client,
		prefix: prefix,
	}
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// Get значение по ключу, cache.ErrMiss если ключа нет
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", cache.ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set устанавливает значение с TTL
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
