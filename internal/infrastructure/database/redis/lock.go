package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "lock is held by another owner")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Mutex is a single-owner lease stored under one key. Each Mutex value has
// its own owner token, so two Mutex values for the same name exclude each
// other.
type Mutex struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration
}

// NewMutex returns an unlocked mutex for name whose lease lasts ttl.
func NewMutex(client *Client, name string, ttl time.Duration) *Mutex {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Mutex{
		client: client,
		key:    client.Key("lock", name),
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

// TryLock acquires the lease without waiting.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.Raw().SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	return ok, nil
}

// Lock retries TryLock every retryDelay until ctx is done.
func (m *Mutex) Lock(ctx context.Context, retryDelay time.Duration) error {
	ticker := time.NewTicker(retryDelay)
	defer ticker.Stop()
	for {
		ok, err := m.TryLock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ErrLockNotAcquired.WithCause(ctx.Err())
			}
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrLockNotAcquired.WithCause(ctx.Err())
		case <-ticker.C:
		}
	}
}

// Unlock releases the lease if this mutex still owns it.
func (m *Mutex) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, m.client.Raw(), []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the lease to ttl if this mutex still owns it.
func (m *Mutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, m.client.Raw(), []string{m.key}, m.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to extend lock")
	}
	return n == 1, nil
}

//Personal.AI order the ending
