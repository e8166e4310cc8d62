package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.WizardStateRepository = (*WizardStateRepo)(nil)

// WizardStateRepo keeps one JSON wizard session per user.
// Every write refreshes the TTL, so abandoned flows expire on their own.
type WizardStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewWizardStateRepo(client RedisClient, ttl time.Duration) *WizardStateRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WizardStateRepo{client: client, ttl: ttl}
}

func (s *WizardStateRepo) key(userID int64) string {
	return fmt.Sprintf("wizard:%d", userID)
}

func (s *WizardStateRepo) Get(ctx context.Context, userID int64) (model.WizardSession, error) {
	data, err := s.client.Get(ctx, s.key(userID))
	if errors.Is(err, redis.Nil) {
		return model.WizardSession{}, nil
	}
	if err != nil {
		return model.WizardSession{}, fmt.Errorf("get wizard session: %w", err)
	}

	var w model.WizardSession
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		// A corrupt session is dropped rather than blocking the user.
		return model.WizardSession{}, nil
	}
	return w, nil
}

func (s *WizardStateRepo) Set(ctx context.Context, userID int64, w model.WizardSession) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), data, s.ttl)
}

func (s *WizardStateRepo) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID))
}
