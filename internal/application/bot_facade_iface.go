package application

import (
	"context"
	"time"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/usecase"
)

// Facade is the surface the transports (Telegram routes, HTTP tick, CLI) depend on.
// Using an interface lets adapter tests pass in light-weight fakes.
type Facade interface {
	RegisterChat(ctx context.Context, req usecase.RegisterChat) (*model.Binding, error)
	ManageTargets(ctx context.Context, userID int64) ([]*model.Binding, error)
	SelectChat(ctx context.Context, userID, chatID int64) (*model.Binding, error)

	ListSchedules(ctx context.Context, userID int64) (*usecase.ScheduleListing, error)
	ToggleSchedule(ctx context.Context, userID int64, docID string) (*model.Schedule, error)
	StartNow(ctx context.Context, userID int64, docID string) (*model.Schedule, error)
	DeleteSchedule(ctx context.Context, userID int64, docID string) error

	StartNew(ctx context.Context, userID int64, ct model.ContentType) (usecase.WizardReply, error)
	StartAdd(ctx context.Context, userID int64, docID string) (usecase.WizardReply, error)
	Receive(ctx context.Context, userID int64, item model.ContentItem) (usecase.WizardReply, error)
	Cancel(ctx context.Context, userID int64) (bool, error)

	RunTick(ctx context.Context, source string, now time.Time) (usecase.TickReport, error)
}
