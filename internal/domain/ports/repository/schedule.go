package repository

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

// -----------------------------
// Schedules
// -----------------------------

// ScheduleRepository persists schedule documents.
// Update is a compare-and-swap on Version: it fails with domain.ErrConflict when
// the stored version differs and bumps Version on success.
type ScheduleRepository interface {
	Create(ctx context.Context, tx Tx, s *model.Schedule) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Schedule, error)
	// FindByIDForUpdate locks the row when tx is a transaction.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Schedule, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Schedule, error)
	ListByChat(ctx context.Context, tx Tx, chatID int64) ([]*model.Schedule, error)
	Update(ctx context.Context, tx Tx, s *model.Schedule) error
	Delete(ctx context.Context, tx Tx, id string) error
	CountActive(ctx context.Context, tx Tx) (int, error)
}
