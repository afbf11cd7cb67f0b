package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/config"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix  = "lock:"
	minBackoff     = 10 * time.Millisecond
	maxBackoff     = 500 * time.Millisecond
	releaseTimeout = 5 * time.Second
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// extendScript pushes the expiry out only if the key still carries our token.
var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Redis is a cross-instance lock built on SET NX with a TTL. The TTL bounds how long a
// crashed holder can block others; a live holder keeps refreshing it until release.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

// DialRedis connects using the lock settings and checks the server is reachable.
func DialRedis(ctx context.Context, cfg config.LockConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Infof("Connected to Redis at %s", cfg.RedisAddr)
	return NewRedis(rdb, cfg.Prefix, cfg.TTL), nil
}

func (r *Redis) tryAcquire(ctx context.Context, key, token string) (bool, error) {
	return r.rdb.SetNX(ctx, r.prefix+key, token, r.ttl).Result()
}

// Acquire retries with capped exponential backoff until the lock is taken or ctx ends.
func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.New().String()
	backoff := minBackoff

	for {
		ok, err := r.tryAcquire(ctx, key, token)
		if err != nil && ctx.Err() != nil {
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		}
		if err != nil {
			return nil, fmt.Errorf("error acquiring lock %s: %w", key, err)
		}
		if ok {
			log.Debugf("Acquired lock: %s", key)
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-time.After(backoff):
			backoff = min(backoff*2, maxBackoff)
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := r.release(releaseCtx, key, token); err != nil {
				log.Warnf("Error releasing lock %s: %v", key, err)
			}
		})
	}, nil
}

// refreshInterval is how often a held lock is extended, a third of the TTL.
func (r *Redis) refreshInterval() time.Duration {
	return max(r.ttl/3, minBackoff)
}

// keepAlive extends the lock every refreshInterval until stop is closed or the lock is lost.
func (r *Redis) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.refreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			err := r.extend(ctx, key, token)
			cancel()
			if errors.Is(err, ErrLockNotHeld) {
				log.Warnf("Lost lock %s before release", key)
				return
			}
			if err != nil {
				log.Warnf("Error extending lock %s: %v", key, err)
			}
		}
	}
}

func (r *Redis) extend(ctx context.Context, key, token string) error {
	n, err := extendScript.Run(ctx, r.rdb, []string{r.prefix + key}, token, r.ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func (r *Redis) release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, r.rdb, []string{r.prefix + key}, token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	log.Debugf("Released lock: %s", key)
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
