package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestAcquireRelease(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	l1 := New(client, "tenant-default:t1", time.Minute)
	ok, err := l1.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second holder is blocked while l1 holds the lock.
	l2 := New(client, "tenant-default:t1", time.Minute)
	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l1.Release(ctx))
	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseOnlyIfOwned(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	l1 := New(client, "k", time.Minute)
	ok, err := l1.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale holder releasing must not free l1's lock.
	stale := New(client, "k", time.Minute)
	require.NoError(t, stale.Release(ctx))

	l2 := New(client, "k", time.Minute)
	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithTenantLock(t *testing.T) {
	client := newTestRedis(t)
	tl := NewTenantLocker(client, time.Minute)

	ran := false
	err := tl.WithTenantLock(context.Background(), "t1", func(context.Context) error {
		ran = true
		// Lock is held during fn.
		l := New(client, "tenant-default:t1", time.Minute)
		ok, err := l.Acquire(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// Lock released after fn returns.
	l := New(client, "tenant-default:t1", time.Minute)
	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWithTenantLockNilLocker(t *testing.T) {
	var tl *TenantLocker
	ran := false
	err := tl.WithTenantLock(context.Background(), "t1", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}
