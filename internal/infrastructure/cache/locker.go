package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "purchasing:lock:"

// RedisLocker hands out distributed locks backed by bsm/redislock
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Obtain acquires key without retrying
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// LocalLocker is a process-local Locker for single instance deployments
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	now   func() time.Time
	token uint64
}

type localLock struct {
	token     uint64
	expiresAt time.Time
}

// NewLocalLocker creates an empty process-local locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock), now: time.Now}
}

// Obtain acquires key unless another holder has it and its ttl has not passed
func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, shared.ErrLockNotObtained
	}
	l.token++
	token := l.token
	l.held[key] = localLock{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// A lock that expired and was taken over belongs to someone else.
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

var (
	_ shared.Locker = (*RedisLocker)(nil)
	_ shared.Locker = (*LocalLocker)(nil)
)
