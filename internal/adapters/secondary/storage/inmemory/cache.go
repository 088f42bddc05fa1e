package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
)

type entry struct {
	value     string
	expiresAt time.Time // нулевое значение - без срока
}

// Cache in-memory реализация cache.Cache для запуска без Redis.
// Просроченные ключи удаляются лениво при чтении и при Sweep.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func New() *Cache {
	return &Cache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

var _ cache.Cache = (*Cache)(nil)

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return "", cache.ErrMiss
	}
	if c.expired(e) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return "", cache.ErrMiss
	}
	return e.value, nil
}

func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Sweep удаляет просроченные ключи, возвращает сколько удалено
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.data {
		if c.expired(e) {
			delete(c.data, k)
			removed++
		}
	}
	return removed
}

// Len количество ключей, включая ещё не вычищенные просроченные
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache) Close() error {
	c.mu.Lock()
	c.data = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

func (c *Cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
