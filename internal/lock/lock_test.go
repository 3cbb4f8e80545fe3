package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, normalizeKeys([]string{"c", "a", "", "b", "a"}))
	assert.Empty(t, normalizeKeys(nil))
}

func lockers(t *testing.T) map[string]Locker {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Locker{
		"local": NewLocalLocker(),
		"redis": NewRedisLocker(client, 5*time.Second),
	}
}

func TestLocker_RequiresKeys(t *testing.T) {
	for name, l := range lockers(t) {
		l := l
		t.Run(name, func(t *testing.T) {
			_, err := l.Acquire(context.Background())
			assert.ErrorIs(t, err, ErrNoKeys)
		})
	}
}

func TestLocker_SerializesOverlappingKeys(t *testing.T) {
	for name, l := range lockers(t) {
		l := l
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var (
				mu      sync.Mutex
				inside  int
				maxSeen int
				wg      sync.WaitGroup
			)

			for i := 0; i < 8; i++ {
				wg.Add(1)
				keys := []string{"AUD-account", "USD-account"}
				if i%2 == 1 {
					keys = []string{"USD-account", "AUD-account"}
				}
				go func(keys []string) {
					defer wg.Done()
					release, err := l.Acquire(ctx, keys...)
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()

					time.Sleep(2 * time.Millisecond)

					mu.Lock()
					inside--
					mu.Unlock()
					release()
				}(keys)
			}
			wg.Wait()

			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestLocalLocker_ContextCancel(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "AUD-account")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "EUR-account", "AUD-account")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// EUR-account must have been released on the failed attempt.
	r2, err := l.Acquire(context.Background(), "EUR-account")
	require.NoError(t, err)
	r2()
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
	release()

	again, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	again()
}
