package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// PendingMarker is stored under a key while its first request is in flight.
const PendingMarker = usecase.IdempotencyPending

const idempotencyPrefix = "budget:idempotency:"

// claimScript sets the key when it is free and otherwise returns what is
// stored, so claim and lookup cannot interleave with an expiry.
var claimScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current then
	return current
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return false
`)

// IdempotencyStore implements usecase.IdempotencyStore on Redis.
type IdempotencyStore struct {
	client redis.Cmdable
	prefix string
}

// NewIdempotencyStore creates an IdempotencyStore.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: idempotencyPrefix}
}

// CheckAndSet claims key for a new request. When the key is taken it
// reports true with the stored value, which is PendingMarker while the
// first request is still running.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	value := []byte(PendingMarker)
	if response != nil {
		value = response
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.prefix + key}, value, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	}

	return true, []byte(existing), nil
}

// Update stores the final response under key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release drops a claim so a failed request can be retried with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
