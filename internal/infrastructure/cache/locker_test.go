package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second obtain fails while held", func(t *testing.T) {
		locker := NewLocalLocker()

		release, err := locker.Obtain(ctx, "idem-1", time.Minute)
		require.NoError(t, err)

		_, err = locker.Obtain(ctx, "idem-1", time.Minute)
		assert.ErrorIs(t, err, shared.ErrLockNotObtained)

		require.NoError(t, release(ctx))

		release, err = locker.Obtain(ctx, "idem-1", time.Minute)
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})

	t.Run("different keys are independent", func(t *testing.T) {
		locker := NewLocalLocker()

		_, err := locker.Obtain(ctx, "a", time.Minute)
		require.NoError(t, err)
		_, err = locker.Obtain(ctx, "b", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("expired lock can be taken over", func(t *testing.T) {
		clock := newClock()
		locker := NewLocalLocker()
		locker.now = clock.Now

		staleRelease, err := locker.Obtain(ctx, "idem-2", time.Second)
		require.NoError(t, err)
		clock.Advance(2 * time.Second)

		_, err = locker.Obtain(ctx, "idem-2", time.Minute)
		require.NoError(t, err)

		// Releasing the stale lock leaves the new holder in place.
		require.NoError(t, staleRelease(ctx))
		_, err = locker.Obtain(ctx, "idem-2", time.Minute)
		assert.ErrorIs(t, err, shared.ErrLockNotObtained)
	})
}

func TestIdempotencyFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("redis disabled uses in-memory", func(t *testing.T) {
		idem, err := NewIdempotencyFactory(config.RedisConfig{Enabled: false}).Create(ctx)
		require.NoError(t, err)
		defer idem.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, idem.Store)
		assert.IsType(t, &LocalLocker{}, idem.Locker)
	})

	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back", func(t *testing.T) {
		idem, err := NewIdempotencyFactory(unreachable).Create(ctx)
		require.NoError(t, err)
		defer idem.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, idem.Store)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, err := NewIdempotencyFactory(unreachable, WithInMemoryFallback(false)).Create(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})

	t.Run("nil bundle closes cleanly", func(t *testing.T) {
		var idem *Idempotency
		assert.NoError(t, idem.Close())
	})
}
