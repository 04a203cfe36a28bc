package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const inflightKeyPrefix = "inflight:"

// Guard marks keys as in flight with SET NX. The TTL bounds how long a crashed
// request can block a key.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuard constructs a Guard.
func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// Acquire claims key. It returns false when the key is already held.
func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, inflightKeyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), g.ttl).Result()
}

// Release frees key.
func (g *Guard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, inflightKeyPrefix+key).Err()
}

// Held reports whether key is claimed.
func (g *Guard) Held(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, inflightKeyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
