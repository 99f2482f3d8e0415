package cache

import (
	"context"
	"time"

	"github.com/shopflux/storefront/internal/domain/shared"
)

// IdempotencyStore remembers the Idempotency-Key of every applied cart
// mutation for its replay window.
type IdempotencyStore struct{ keys Keys }

var _ shared.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(keys Keys) *IdempotencyStore {
	return &IdempotencyStore{keys: keys}
}

// NewInMemoryIdempotencyStore is a single-replica store for tests and
// deployments without Redis.
func NewInMemoryIdempotencyStore() *IdempotencyStore {
	return NewIdempotencyStore(NewMemoryKeys())
}

func (s *IdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.keys.Claim(ctx, key, ttl)
}

// IsProcessed reports whether key is currently claimed.
func (s *IdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return s.keys.Has(ctx, key)
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.keys.Release(ctx, key)
}

func (s *IdempotencyStore) Close() error { return s.keys.Close() }

// RevokedTokens lists signed-out bearer tokens by revocation key until
// they would have expired anyway. It satisfies auth.RevocationList.
type RevokedTokens struct{ keys Keys }

func NewRevokedTokens(keys Keys) *RevokedTokens {
	return &RevokedTokens{keys: keys}
}

func (r *RevokedTokens) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	return r.keys.Put(ctx, key, ttl)
}

func (r *RevokedTokens) IsRevoked(ctx context.Context, key string) (bool, error) {
	return r.keys.Has(ctx, key)
}

func (r *RevokedTokens) Close() error { return r.keys.Close() }
