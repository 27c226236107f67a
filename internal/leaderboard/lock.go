package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 5 * time.Minute

// Lock coordinates exclusive leaderboard rebuilds across ranker
// instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// redisStore defines the operations the rebuild lock needs.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RebuildLock is a Redis SETNX lock with an owner token, so a worker
// whose lease expired cannot release a lock another worker now holds.
type RebuildLock struct {
	store redisStore
	key   string
	ttl   time.Duration
	owner string
}

// NewRebuildLock constructs a Redis-backed rebuild lock. A zero ttl
// falls back to a lease generous enough to cover a full rebuild.
func NewRebuildLock(store redisStore, key string, ttl time.Duration) (*RebuildLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for rebuild lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RebuildLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire takes the lock for the lease duration. A false return with
// nil error means another instance holds it.
func (l *RebuildLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock if this instance still owns it. Releasing a
// lock that expired and was re-taken elsewhere is a no-op.
func (l *RebuildLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	current, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read rebuild lock owner: %w", err)
	}
	if current == l.owner {
		if err := l.store.Del(ctx, l.key); err != nil {
			return fmt.Errorf("release rebuild lock: %w", err)
		}
	}
	l.owner = ""
	return nil
}
