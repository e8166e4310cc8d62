package repository

import (
	"context"
	"time"
)

// Locker is a best-effort mutual exclusion primitive.
// TryLock returns domain.ErrLockHeld when another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
