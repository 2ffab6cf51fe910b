package store

import (
	"context"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// redisLocker adapts bsm/redislock to the Locker seam
// redislock releases by token, so held locks are tracked per key here;
// a key is held by at most one caller within this process at a time
type redisLocker struct {
	rdb    *redis.Client
	locker *redislock.Client

	mu   sync.Mutex
	held map[string]*redislock.Lock
}

func newRedisLocker(ctx context.Context, cfg RedisConfig) (*redisLocker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &redisLocker{
		rdb:    rdb,
		locker: redislock.New(rdb),
		held:   map[string]*redislock.Lock{},
	}, nil
}

// Acquire obtains key for ttl; false means another holder owns it
func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lk, err := l.locker.Obtain(ctx, key, ttl, nil)
	if err == redislock.ErrNotObtained {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	l.mu.Lock()
	l.held[key] = lk
	l.mu.Unlock()
	return true, nil
}

// Release frees key if this process holds it; unknown keys are a no-op
func (l *redisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	lk := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()
	if lk == nil {
		return nil
	}
	err := lk.Release(ctx)
	if err == redislock.ErrLockNotHeld {
		// TTL expired under us; nothing left to free
		return nil
	}
	return err
}

func (l *redisLocker) Ping(ctx context.Context) error { return l.rdb.Ping(ctx).Err() }

func (l *redisLocker) Close() error { return l.rdb.Close() }
