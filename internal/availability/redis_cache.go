package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores resolved slot lists as JSON under "slots:<key>" with a
// short TTL, scoped to roughly one form session.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(key string) string {
	return fmt.Sprintf("slots:%s", key)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]TimeSlot, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var slots []TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		// A corrupt entry counts as a miss; the resolver will overwrite it.
		return nil, false, nil
	}

	return slots, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, slots []TimeSlot) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	return c.client.Set(ctx, cacheKey(key), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, cacheKey(key)).Err()
}
