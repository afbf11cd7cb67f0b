package keylock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExclusive checks that at most one holder of a key runs at a time.
func testExclusive(t *testing.T, l Locker, key string) {
	var (
		wg      sync.WaitGroup
		holders atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), key)
			if !assert.NoError(t, err) {
				return
			}
			n := holders.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			holders.Add(-1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestLocalExclusive(t *testing.T) {
	l := NewLocal()
	testExclusive(t, l, "gpu|rtx 3080")
	assert.Zero(t, l.Len())
}

func TestLocalIndependentKeys(t *testing.T) {
	l := NewLocal()
	releaseA, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := l.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalAcquireHonoursContext(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Zero(t, l.Len())
}

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("SPECS_TEST_REDIS")
	if addr == "" {
		t.Skip("SPECS_TEST_REDIS not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	l := NewRedis(rdb, "specs:test:", 10*time.Second)
	defer l.Close()

	key := uuid.New().String()
	testExclusive(t, l, key)

	release, err := l.Acquire(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	release()
	exists, err := rdb.Exists(context.Background(), "specs:test:"+key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisRefreshInterval(t *testing.T) {
	assert.Equal(t, 40*time.Second, NewRedis(nil, "", 2*time.Minute).refreshInterval())
	assert.Equal(t, minBackoff, NewRedis(nil, "", time.Millisecond).refreshInterval())
}

func TestRedisLockOutlivesTTLWhileHeld(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("SPECS_TEST_REDIS")
	if addr == "" {
		t.Skip("SPECS_TEST_REDIS not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	ttl := 300 * time.Millisecond
	l := NewRedis(rdb, "specs:test:", ttl)
	defer l.Close()

	key := uuid.New().String()
	release, err := l.Acquire(context.Background(), key)
	require.NoError(t, err)

	time.Sleep(3 * ttl)

	exists, err := rdb.Exists(context.Background(), "specs:test:"+key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()
	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	release()
	exists, err = rdb.Exists(context.Background(), "specs:test:"+key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
