//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-post-scheduler/internal/domain"
)

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	cli := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = cli.Close() })

	l := NewLocker(NewFromRedis(cli), 1)
	key := "test:lock:" + time.Now().Format("150405.000")

	token, err := l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	require.NoError(t, l.Unlock(ctx, key, "wrong-token"))
	_, err = l.TryLock(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, domain.ErrLockHeld, "a foreign token must not release the lock")

	require.NoError(t, l.Unlock(ctx, key, token))
	_, err = l.TryLock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
}
