package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which client-supplied keys were already
// applied, so a retried cart mutation is answered without repeating it.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key was
	// already claimed and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets a claimed key whose request failed, so a retry is
	// applied.
	Release(ctx context.Context, key string) error
	Close() error
}
