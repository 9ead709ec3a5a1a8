package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFestivalKey(t *testing.T) {
	assert.Equal(t, "festival:abc:settlement", FestivalKey("abc"))
}

func TestLocal_SerialisesSameKey(t *testing.T) {
	l := NewLocal()
	var active, maxActive int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), "k", func(context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, l.locks, "entries are removed once unused")
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	err := l.WithLock(context.Background(), "a", func(ctx context.Context) error {
		return l.WithLock(ctx, "b", func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "k", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.WithLock(ctx, "k", func(context.Context) error {
		t.Error("fn must not run while the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestLocal_ReturnsFnError(t *testing.T) {
	boom := errors.New("boom")
	err := NewLocal().WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedis_WithLock(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedis(client, DefaultRedisOptions())

	ran := false
	err := locker.WithLock(context.Background(), FestivalKey("f1"), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	exists, err := client.Exists(context.Background(), FestivalKey("f1")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "lock key is released")
}

func TestRedis_BusyWhileHeld(t *testing.T) {
	client := setupTestRedis(t)
	holder := NewRedis(client, DefaultRedisOptions())
	contender := NewRedis(client, RedisOptions{Expiry: time.Second, Tries: 1, RetryDelay: time.Millisecond})

	err := holder.WithLock(context.Background(), "k", func(ctx context.Context) error {
		return contender.WithLock(ctx, "k", func(context.Context) error {
			t.Error("contender must not acquire a held lock")
			return nil
		})
	})
	assert.ErrorIs(t, err, ErrBusy)

	err = contender.WithLock(context.Background(), "k", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestRedis_ExtendsWhileHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	opts := RedisOptions{Expiry: 100 * time.Millisecond, Tries: 1, RetryDelay: time.Millisecond}
	locker := NewRedis(client, opts)

	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		// miniredis only expires keys on FastForward; leave 20ms of the TTL.
		mr.FastForward(80 * time.Millisecond)
		time.Sleep(130 * time.Millisecond)

		assert.True(t, mr.Exists("k"), "lock key must still exist")
		assert.Greater(t, mr.TTL("k"), 50*time.Millisecond, "TTL must have been refreshed")
		return ctx.Err()
	})
	require.NoError(t, err)
}

func TestRedis_CancelsWhenLockLost(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	locker := NewRedis(client, RedisOptions{Expiry: 100 * time.Millisecond, Tries: 1, RetryDelay: time.Millisecond})

	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		mr.Del("k")

		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Error("context was not cancelled after the lock was lost")
		}
		assert.ErrorIs(t, context.Cause(ctx), ErrLockLost)
		return ctx.Err()
	})
	assert.ErrorIs(t, err, ErrLockLost)
	assert.ErrorIs(t, err, context.Canceled)
}
