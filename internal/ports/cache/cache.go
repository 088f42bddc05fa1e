package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss ключа нет в кэше
var ErrMiss = errors.New("cache miss")

// Cache строковый кэш read-моделей (отчёты, сегменты); Get возвращает ErrMiss при отсутствии ключа
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
