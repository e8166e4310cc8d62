package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BindingUseCase = (*bindingUC)(nil)

// RegisterChat describes a /setconfig request.
type RegisterChat struct {
	ChatID    int64
	ChatTitle string
	IsGroup   bool
	UserID    int64
}

// BindingUseCase manages which chats a user may administer through the bot.
type BindingUseCase interface {
	Register(ctx context.Context, req RegisterChat) (*model.Binding, error)
	List(ctx context.Context, userID int64) ([]*model.Binding, error)
	// Select stores chatID as the user's management target. The session is
	// left untouched when no binding exists.
	Select(ctx context.Context, userID, chatID int64) (*model.Binding, error)
}

type bindingUC struct {
	bindings repository.BindingRepository
	states   repository.WizardStateRepository
	admins   adapter.ChatAdminChecker
	log      *zerolog.Logger
}

func NewBindingUseCase(
	bindings repository.BindingRepository,
	states repository.WizardStateRepository,
	admins adapter.ChatAdminChecker,
	logger *zerolog.Logger,
) *bindingUC {
	return &bindingUC{bindings: bindings, states: states, admins: admins, log: logger}
}

func (u *bindingUC) Register(ctx context.Context, req RegisterChat) (*model.Binding, error) {
	defer logging.TraceDuration(u.log, "BindingUC.Register")()

	if !req.IsGroup {
		return nil, domain.ErrContext
	}
	isAdmin, err := u.admins.IsChatAdmin(ctx, req.ChatID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat admins: %w", err)
	}
	if !isAdmin {
		return nil, domain.ErrPermission
	}

	b, err := model.NewBinding(req.UserID, req.ChatID, req.ChatTitle)
	if err != nil {
		return nil, err
	}
	if err := u.bindings.Save(ctx, repository.NoTX, b); err != nil {
		return nil, err
	}
	u.log.Info().Int64("tg_id", req.UserID).Int64("chat_id", req.ChatID).Msg("chat registered")
	return b, nil
}

func (u *bindingUC) List(ctx context.Context, userID int64) ([]*model.Binding, error) {
	defer logging.TraceDuration(u.log, "BindingUC.List")()

	items, err := u.bindings.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return items, nil
}

func (u *bindingUC) Select(ctx context.Context, userID, chatID int64) (*model.Binding, error) {
	defer logging.TraceDuration(u.log, "BindingUC.Select")()

	b, err := u.bindings.Find(ctx, repository.NoTX, userID, chatID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}

	w, err := u.states.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.states.Set(ctx, userID, w.Select(b.ChatID, b.ChatTitle)); err != nil {
		return nil, err
	}
	return b, nil
}

// requireBinding fails with domain.ErrNotFound unless userID manages chatID.
func requireBinding(ctx context.Context, bindings repository.BindingRepository, tx repository.Tx, userID, chatID int64) error {
	b, err := bindings.Find(ctx, tx, userID, chatID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && b == nil) {
		return domain.ErrNotFound
	}
	return err
}
