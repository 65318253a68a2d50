package cache

import (
	"context"
	"fmt"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency bundles the store and locker used for idempotent creates
type Idempotency struct {
	Store  shared.IdempotencyStore
	Locker shared.Locker
}

// Close releases the store
func (i *Idempotency) Close() error {
	if i == nil || i.Store == nil {
		return nil
	}
	return i.Store.Close()
}

// IdempotencyFactory creates idempotency components based on configuration
type IdempotencyFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyFactoryOption is a functional option for configuring the factory
type IdempotencyFactoryOption func(*IdempotencyFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyFactoryOption {
	return func(f *IdempotencyFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory components
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyFactoryOption {
	return func(f *IdempotencyFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyFactory creates a new factory
func NewIdempotencyFactory(cfg config.RedisConfig, opts ...IdempotencyFactoryOption) *IdempotencyFactory {
	f := &IdempotencyFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InMemory returns process-local components.
// They do not share state across instances, so duplicates sent to different
// instances are not deduplicated.
func (f *IdempotencyFactory) InMemory() *Idempotency {
	return &Idempotency{
		Store:  NewInMemoryIdempotencyStore(),
		Locker: NewLocalLocker(),
	}
}

// Create returns Redis backed components when Redis is enabled and reachable,
// in-memory ones otherwise (if fallback is allowed)
func (f *IdempotencyFactory) Create(ctx context.Context) (*Idempotency, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return f.InMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.RedisAddr()))
		return &Idempotency{
			Store:  NewRedisIdempotencyStore(client, ""),
			Locker: NewRedisLocker(client),
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return f.InMemory(), nil
}
