package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arbscan/arbscan/internal/domain"
)

// releaseTimeout bounds the unlock call, which runs on a background context
// so a cancelled scan cycle can still release its lock.
const releaseTimeout = 5 * time.Second

// releaseScript deletes the lock key only when it still holds the caller's
// token. A replica whose lock expired mid-cycle must not delete the lock a
// newer holder acquired in the meantime.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// LockManager implements domain.LockManager with SETNX and a TTL. Its one
// consumer is the scanner, which takes the cycle lock before each run so
// replicas sharing a Redis never scan concurrently; the TTL is the cycle
// interval, so a crashed holder's lock expires before the next cycle is due.
type LockManager struct {
	client *Client
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{client: c}
}

func lockKey(key string) string {
	return keyPrefix + "lock:" + key
}

// Acquire takes the lock for key, returning domain.ErrLockHeld when another
// holder owns it. The returned release function is idempotent.
func (lm *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	rdb := lm.client.Underlying()
	token := uuid.NewString()
	lk := lockKey(key)

	ok, err := rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true

		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, rdb, []string{lk}, token).Err()
	}
	return release, nil
}

var _ domain.LockManager = (*LockManager)(nil)
