// Package lock provides distributed mutual exclusion on top of Redis
// set-if-not-exists semantics. Locks auto-expire so a crashed holder cannot
// wedge the resource forever.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

// releaseScript deletes the lock key only when it still holds this
// acquisition's token. An unconditional delete could release a lock that
// expired and was re-acquired by another caller.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// AcquireLock returns (nil, nil) when the resource is already held by
// another caller.
func (l *RedisLocker) AcquireLock(ctx context.Context, resource string, expiry time.Duration) (port.Lock, error) {
	key := lockKey(resource)

	token, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("lock: failed to generate lock token: %w", err)
	}

	acquired, err := l.client.SetNX(ctx, key, token.String(), expiry).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: failed to acquire lock for %s: %w", resource, err)
	}
	if !acquired {
		log.Debug().Str("resource", resource).Msg("lock: resource already held")
		return nil, nil
	}

	log.Debug().Str("resource", resource).Msg("lock: acquired")
	return &redisLock{client: l.client, key: key, token: token.String()}, nil
}

func (l *RedisLocker) TryAcquireLock(ctx context.Context, resource string, expiry time.Duration) (bool, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return false, fmt.Errorf("lock: failed to generate lock token: %w", err)
	}

	acquired, err := l.client.SetNX(ctx, lockKey(resource), token.String(), expiry).Result()
	if err != nil {
		return false, fmt.Errorf("lock: failed to acquire lock for %s: %w", resource, err)
	}

	return acquired, nil
}

type redisLock struct {
	client *redis.Client
	key    string
	token  string

	once sync.Once
}

// Release is idempotent: only the first call touches Redis, and the
// compare-and-delete script makes it safe even after the key has expired.
func (l *redisLock) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		if _, scriptErr := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Result(); scriptErr != nil {
			log.Warn().Err(scriptErr).Str("lock_key", l.key).Msg("lock: failed to release")
			err = fmt.Errorf("lock: failed to release %s: %w", l.key, scriptErr)
			return
		}
		log.Debug().Str("lock_key", l.key).Msg("lock: released")
	})

	return err
}

func lockKey(resource string) string {
	return "lock:" + resource
}
