package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/metrics"
	red "telegram-post-scheduler/internal/infra/redis"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var _ repository.BindingRepository = (*bindingRepoCacheDecorator)(nil)

// bindingRepoCacheDecorator caches the per-user binding list that /manage and
// every ownership check read. Writes invalidate the user's entry.
type bindingRepoCacheDecorator struct {
	inner repository.BindingRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewBindingRepoCacheDecorator(inner repository.BindingRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.BindingRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &bindingRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func bindingsKey(userID int64) string { return fmt.Sprintf("bindings:%d", userID) }

func (d *bindingRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, b *model.Binding) error {
	if err := d.cache.Del(ctx, bindingsKey(b.OwnerUserID)); err != nil {
		d.log.Warn().Err(err).Int64("tg_id", b.OwnerUserID).Msg("binding cache invalidation failed")
	}
	return d.inner.Save(ctx, tx, b)
}

func (d *bindingRepoCacheDecorator) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Binding, error) {
	// A transactional read must see the transaction's own writes.
	if tx != nil {
		return d.inner.ListByUser(ctx, tx, userID)
	}

	key := bindingsKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var items []*model.Binding
		if json.Unmarshal([]byte(val), &items) == nil {
			metrics.IncCacheRequest("bindings", "hit")
			return items, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		d.log.Warn().Err(err).Msg("binding cache read failed")
	}

	metrics.IncCacheRequest("bindings", "miss")
	items, err := d.inner.ListByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		bytes, _ := json.Marshal(items)
		if err := d.cache.Set(ctx, key, bytes, d.ttl); err != nil {
			d.log.Warn().Err(err).Msg("binding cache write failed")
		}
	}
	return items, nil
}

// Find is answered from the cached list when present.
func (d *bindingRepoCacheDecorator) Find(ctx context.Context, tx repository.Tx, userID, chatID int64) (*model.Binding, error) {
	if tx != nil {
		return d.inner.Find(ctx, tx, userID, chatID)
	}
	val, err := d.cache.Get(ctx, bindingsKey(userID))
	if err == nil {
		var items []*model.Binding
		if json.Unmarshal([]byte(val), &items) == nil {
			for _, b := range items {
				if b.ChatID == chatID {
					metrics.IncCacheRequest("binding", "hit")
					return b, nil
				}
			}
		}
	}
	metrics.IncCacheRequest("binding", "miss")
	return d.inner.Find(ctx, tx, userID, chatID)
}
