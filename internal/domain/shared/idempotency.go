package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the result of a request keyed by a client
// supplied idempotency key
type IdempotencyStore interface {
	// Lookup returns the stored result for key and whether it exists
	Lookup(ctx context.Context, key string) (string, bool, error)

	// Remember stores result under key for ttl. An existing entry is kept.
	Remember(ctx context.Context, key, result string, ttl time.Duration) error

	// Close closes the store and releases resources
	Close() error
}

// Locker hands out short lived exclusive locks by key
type Locker interface {
	// Obtain acquires the lock or fails fast with ErrLockNotObtained.
	// The returned release func must be called exactly once.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key maps to its first result
	TTL time.Duration

	// LockTTL bounds how long an in-flight request holds the key
	LockTTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		LockTTL: 30 * time.Second,
		Enabled: true,
	}
}
