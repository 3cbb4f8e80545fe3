package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "lock:account:"

// RedisLocker is a Locker shared by every instance pointed at the same Redis.
type RedisLocker struct {
	rs         *redsync.Redsync
	expiry     time.Duration
	tries      int
	retryDelay time.Duration
}

// NewRedisLocker builds a redsync-backed locker. expiry bounds how long a
// crashed holder can block an account.
func NewRedisLocker(client redis.UniversalClient, expiry time.Duration) *RedisLocker {
	if expiry <= 0 {
		expiry = 10 * time.Second
	}
	return &RedisLocker{
		rs:         redsync.New(goredis.NewPool(client)),
		expiry:     expiry,
		tries:      64,
		retryDelay: 25 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	held := make([]*redsync.Mutex, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			ok, err := held[i].UnlockContext(context.Background())
			if err != nil || !ok {
				zap.L().Warn("account lock release failed",
					zap.String("lock", held[i].Name()),
					zap.Bool("released", ok),
					zap.Error(err),
				)
			}
		}
	}

	for _, k := range keys {
		m := l.rs.NewMutex(redisKeyPrefix+k,
			redsync.WithExpiry(l.expiry),
			redsync.WithTries(l.tries),
			redsync.WithRetryDelay(l.retryDelay),
		)
		if err := m.LockContext(ctx); err != nil {
			release()
			return nil, fmt.Errorf("acquire lock %q: %w", k, err)
		}
		held = append(held, m)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
