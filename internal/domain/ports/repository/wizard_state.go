package repository

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

// WizardStateRepository is the port for per-user wizard sessions.
// Get returns an empty session, not an error, when nothing is stored.
type WizardStateRepository interface {
	Get(ctx context.Context, userID int64) (model.WizardSession, error)
	Set(ctx context.Context, userID int64, w model.WizardSession) error
	Clear(ctx context.Context, userID int64) error
}
