package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key namespaces in the shared Redis database.
const (
	IdempotencyPrefix   = "storefront:idempotency:"
	RevokedTokensPrefix = "storefront:token:revoked:"
)

// RedisKeys stores each key as its own Redis string with an expiry, so
// every replica sees the same set. Claim relies on SET NX.
type RedisKeys struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKeys does not own client; Close leaves it open.
func NewRedisKeys(client redis.Cmdable, prefix string) *RedisKeys {
	return &RedisKeys{client: client, prefix: prefix}
}

func (r *RedisKeys) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s%s: %w", r.prefix, key, err)
	}
	return ok, nil
}

func (r *RedisKeys) Put(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("put %s%s: %w", r.prefix, key, err)
	}
	return nil
}

func (r *RedisKeys) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("lookup %s%s: %w", r.prefix, key, err)
	}
	return n == 1, nil
}

func (r *RedisKeys) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("release %s%s: %w", r.prefix, key, err)
	}
	return nil
}

func (r *RedisKeys) Close() error { return nil }
