//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
	red "telegram-post-scheduler/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerBindingRepo mocks the database repository that the binding decorator wraps.
type mockInnerBindingRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, b *model.Binding) error
	ListByUserFunc func(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Binding, error)
	FindFunc       func(ctx context.Context, tx repository.Tx, userID, chatID int64) (*model.Binding, error)
}

func (m *mockInnerBindingRepo) Save(ctx context.Context, tx repository.Tx, b *model.Binding) error {
	return m.SaveFunc(ctx, tx, b)
}
func (m *mockInnerBindingRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Binding, error) {
	return m.ListByUserFunc(ctx, tx, userID)
}
func (m *mockInnerBindingRepo) Find(ctx context.Context, tx repository.Tx, userID, chatID int64) (*model.Binding, error) {
	return m.FindFunc(ctx, tx, userID, chatID)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", redis.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
