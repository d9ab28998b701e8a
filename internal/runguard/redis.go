// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package runguard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/cpsync/internal/logging"
)

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// DefaultLockTTL bounds how long a crashed holder can block other replicas.
const DefaultLockTTL = 30 * time.Minute

// Redis is a guard shared by every process using the same key.
type Redis struct {
	local  *Local
	client redis.UniversalClient
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	token string
}

var _ Guard = (*Redis)(nil)

// NewRedis creates a guard on key. A zero ttl uses DefaultLockTTL; the ttl
// should exceed the longest expected run.
func NewRedis(client redis.UniversalClient, key string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Redis{
		local:  NewLocal(key),
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// TryAcquire implements Guard. It reports false with the error when Redis
// cannot be reached.
func (r *Redis) TryAcquire(ctx context.Context) (bool, error) {
	ok, _ := r.local.TryAcquire(ctx)
	if !ok {
		return false, nil
	}

	token := uuid.NewString()
	acquired, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		_ = r.local.Release(ctx)
		return false, fmt.Errorf("acquire redis lock %s: %w", r.key, err)
	}
	if !acquired {
		_ = r.local.Release(ctx)
		return false, nil
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
	return true, nil
}

// Release implements Guard. The local guard is released even when the Redis
// delete fails; the key then expires after its TTL.
func (r *Redis) Release(ctx context.Context) error {
	r.mu.Lock()
	token := r.token
	r.token = ""
	r.mu.Unlock()

	if token == "" {
		return ErrNotHeld
	}
	defer func() { _ = r.local.Release(ctx) }()

	deleted, err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Int64()
	if err != nil {
		return fmt.Errorf("release redis lock %s: %w", r.key, err)
	}
	if deleted == 0 {
		logging.Ctx(ctx).Warn().Str("key", r.key).Msg("Redis lock expired or taken over before release")
	}
	return nil
}

// Held implements Guard.
func (r *Redis) Held() bool { return r.local.Held() }

// NewRedisClient parses a redis:// URL and checks connectivity.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

