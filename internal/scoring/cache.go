package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed leaderboards. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]Standing, bool, error)
	Set(ctx context.Context, key string, standings []Standing) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheKey names the leaderboard for event, optionally narrowed to committee.
func CacheKey(eventID, committeeID string) string {
	if committeeID == "" {
		committeeID = "all"
	}
	return fmt.Sprintf("leaderboard:%s:%s", eventID, committeeID)
}

// RedisCache keeps leaderboards as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a cache over client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Standing, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []Standing
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached leaderboard: %w", err)
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, standings []Standing) error {
	raw, err := json.Marshal(standings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
