// Package distlock provides best-effort distributed locking via Redis.
//
// The default-sender invariant is maintained with sequential per-item writes
// (the store has no multi-item transaction), so concurrent default changes on
// one tenant can race. When Redis is configured, a short per-tenant lock
// narrows that window; when it is not, or acquisition fails, callers proceed
// without the lock. The lock is an optimization, never a correctness
// dependency.
package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a single-use distributed lock backed by Redis SET NX with TTL.
// A random ownership value and a Lua script on release prevent one process
// from releasing a lock another process now holds.
type Lock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// New creates a lock for the given key.
func New(client *redis.Client, key string, ttl time.Duration) *Lock {
	b := make([]byte, 16)
	rand.Read(b)
	return &Lock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

// Acquire tries to acquire the lock. Returns true if successful.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	return ok, nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release releases the lock only if we still own it.
func (l *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	return nil
}

// TenantLocker hands out per-tenant locks for default-sender mutation.
// A nil *TenantLocker is valid and locks nothing.
type TenantLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTenantLocker creates a locker. ttl bounds how long a crashed holder can
// block other writers.
func NewTenantLocker(client *redis.Client, ttl time.Duration) *TenantLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &TenantLocker{client: client, ttl: ttl}
}

// WithTenantLock runs fn under the tenant's lock when possible. If the locker
// is nil, Redis is unreachable, or the lock is contended, fn runs anyway:
// the caller's conditional writes remain the real safety net.
func (tl *TenantLocker) WithTenantLock(ctx context.Context, tenantID string, fn func(context.Context) error) error {
	if tl == nil || tl.client == nil {
		return fn(ctx)
	}
	lock := New(tl.client, "tenant-default:"+tenantID, tl.ttl)
	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		return fn(ctx)
	}
	defer lock.Release(ctx)
	return fn(ctx)
}
