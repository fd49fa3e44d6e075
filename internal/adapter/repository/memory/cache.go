package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements usecase.Cache with lazy expiry.
type Cache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

// NewCache creates a Cache. now defaults to time.Now.
func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{items: make(map[string]cacheItem), now: now}
}

// Get returns usecase.ErrCacheMiss for missing or expired keys.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.live(key)
}

// Take is Get followed by removal under one lock.
func (c *Cache) Take(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.live(key)
	if err != nil {
		return nil, err
	}
	delete(c.items, key)
	return value, nil
}

func (c *Cache) live(key string) ([]byte, error) {
	item, ok := c.items[key]
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return nil, usecase.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores value; a non-positive ttl never expires.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

// SequenceGenerator issues ordered, zero-padded ids. Useful where ids must
// sort in creation order deterministically.
type SequenceGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator creates a SequenceGenerator.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	return fmt.Sprintf("%s%08d", g.prefix, g.n.Add(1))
}
