package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a fixed-window counter backend. Incr records one attempt for key
// in the current window and returns the post-increment count. The first
// attempt of a window must observe count 1, and the increment must be
// atomic: two concurrent attempts never collapse into one.
type Store interface {
	Incr(ctx context.Context, key string, period time.Duration) (int64, error)
}

// RedisStore counts attempts in Redis keys that expire with their window.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using the given client. The prefix
// namespaces limiter keys; empty defaults to "rl".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Incr increments the window counter for key. The TTL is set only on the
// first hit so the key expires exactly one period after the window opened.
func (s *RedisStore) Incr(ctx context.Context, key string, period time.Duration) (int64, error) {
	redisKey := fmt.Sprintf("%s:%s", s.prefix, key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, period).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return count, nil
}

var _ Store = (*RedisStore)(nil)
