package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopflux/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory decides once whether the key stores live in Redis or in
// process memory, and hands out stores accordingly.
type Factory struct {
	cfg         config.RedisConfig
	log         *zap.Logger
	allowMemory bool

	client *redis.Client
	dialed bool
}

type FactoryOption func(*Factory)

func WithLogger(log *zap.Logger) FactoryOption {
	return func(f *Factory) { f.log = log }
}

// WithInMemoryFallback controls whether an unreachable Redis is an error
// or a warning. Fallback is on by default; production turns it off.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) { f.allowMemory = allow }
}

func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{cfg: cfg, log: zap.NewNop(), allowMemory: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis on first use. A nil client with a nil error means
// the stores run in memory, either because Redis is not configured or
// because it is unreachable and fallback is allowed.
func (f *Factory) Connect(ctx context.Context) (*redis.Client, error) {
	if f.dialed {
		return f.client, nil
	}

	if !f.cfg.Enabled() {
		f.log.Info("Redis not configured, using in-memory stores")
		f.dialed = true
		return nil, nil
	}

	client, err := NewRedisClient(ctx, f.cfg)
	switch {
	case err == nil:
		f.log.Info("Connected to Redis", zap.String("addr", f.cfg.Addr()))
		f.client = client
	case f.allowMemory:
		f.log.Warn("Redis unavailable, falling back to in-memory stores; "+
			"idempotency keys and revoked tokens are not shared between replicas",
			zap.String("addr", f.cfg.Addr()), zap.Error(err))
	default:
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.dialed = true
	return f.client, nil
}

func (f *Factory) keys(ctx context.Context, prefix string) (Keys, error) {
	client, err := f.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return NewMemoryKeys(), nil
	}
	return NewRedisKeys(client, prefix), nil
}

func (f *Factory) IdempotencyStore(ctx context.Context) (*IdempotencyStore, error) {
	keys, err := f.keys(ctx, IdempotencyPrefix)
	if err != nil {
		return nil, err
	}
	return NewIdempotencyStore(keys), nil
}

func (f *Factory) RevokedTokens(ctx context.Context) (*RevokedTokens, error) {
	keys, err := f.keys(ctx, RevokedTokensPrefix)
	if err != nil {
		return nil, err
	}
	return NewRevokedTokens(keys), nil
}

// Close closes the Redis client, if one was opened.
func (f *Factory) Close() error {
	client := f.client
	f.client, f.dialed = nil, false
	if client == nil {
		return nil
	}
	return client.Close()
}
