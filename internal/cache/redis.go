// Package cache is a Redis-backed read cache with JSON values. Provider
// failures are swallowed after logging: a broken cache degrades every
// operation to a miss, it never blocks the primary path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("cache_key", key).Msg("cache: failed to get value")
		}
		return false, nil
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("cache: failed to unmarshal value")
		return false, nil
	}

	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("cache: failed to marshal value")
		return nil
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("cache: failed to set value")
	}

	return nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("cache_key", key).Msg("cache: failed to remove value")
	}

	return nil
}

// RemoveByPrefix scans and deletes every key under the prefix. Coarse, but
// a short window of staleness beats per-page invalidation bookkeeping.
func (c *RedisCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	removed := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("cache: failed to scan keys")
			return nil
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				log.Warn().Err(err).Str("prefix", prefix).Msg("cache: failed to remove keys")
				return nil
			}
			removed += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		log.Debug().Int("count", removed).Str("prefix", prefix).Msg("cache: removed keys by prefix")
	}

	return nil
}
