package repository

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

// BindingRepository stores which chats a user may manage.
// Save is an upsert keyed by (user, chat).
type BindingRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Binding) error
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Binding, error)
	Find(ctx context.Context, tx Tx, userID, chatID int64) (*model.Binding, error)
}
