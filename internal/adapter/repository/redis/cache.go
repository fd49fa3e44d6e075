package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

const cachePrefix = "budget:cache:"

// Cache implements usecase.Cache on Redis. Transfer previews live here
// so a token minted by one instance can be confirmed on any other.
type Cache struct {
	client redis.Cmdable
	prefix string
}

// NewCache creates a Cache over any go-redis client, including cluster
// and ring clients.
func NewCache(client redis.Cmdable) *Cache {
	return &Cache{client: client, prefix: cachePrefix}
}

// Get returns usecase.ErrCacheMiss when the key is absent or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	return missing(c.client.Get(ctx, c.prefix+key).Bytes())
}

// Set stores value. A zero ttl keeps the key until it is taken.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Take reads and removes key with a single GETDEL.
func (c *Cache) Take(ctx context.Context, key string) ([]byte, error) {
	return missing(c.client.GetDel(ctx, c.prefix+key).Bytes())
}

func missing(val []byte, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	}
	return val, err
}
