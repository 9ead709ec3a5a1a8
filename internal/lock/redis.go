package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisOptions tunes the distributed mutex.
type RedisOptions struct {
	// Expiry bounds how long a crashed holder keeps the lock. A live holder
	// extends it every Expiry/2 for as long as fn runs.
	Expiry time.Duration

	// Tries is the number of acquisition attempts before giving up.
	Tries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultRedisOptions returns options suited to a festival close, which runs
// well under a second for realistic festivals.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     30 * time.Second,
		Tries:      20,
		RetryDelay: 250 * time.Millisecond,
	}
}

// Redis is a distributed lock backed by redsync.
type Redis struct {
	rs   *redsync.Redsync
	opts RedisOptions
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a distributed locker on top of the given client.
func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	return &Redis{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// WithLock acquires the distributed mutex for key, runs fn and releases it.
// While fn runs the lock is extended in the background. If an extension
// fails the context passed to fn is cancelled with ErrLockLost as cause.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	mutex := r.rs.NewMutex(key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBusy, key, err)
	}
	slog.Debug("Lock acquired", "key", key)

	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			slog.Warn("Failed to release lock", "key", key, "unlock_ok", ok, "error", err)
		}
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := r.keepAlive(runCtx, cancel, mutex, key)
	defer stop()

	if err := fn(runCtx); err != nil {
		if cause := context.Cause(runCtx); errors.Is(cause, ErrLockLost) {
			return fmt.Errorf("%w: %w", cause, err)
		}
		return err
	}
	return nil
}

// keepAlive extends mutex every Expiry/2 until stop is called or ctx ends.
func (r *Redis) keepAlive(ctx context.Context, cancel context.CancelCauseFunc, mutex *redsync.Mutex, key string) (stop func()) {
	interval := r.opts.Expiry / 2
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ok, err := mutex.ExtendContext(ctx); !ok || err != nil {
					slog.Error("Lost lock while holding it", "key", key, "extend_ok", ok, "error", err)
					cancel(fmt.Errorf("%w: %s", ErrLockLost, key))
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}
