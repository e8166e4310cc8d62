package usecase

import (
	"context"
	"errors"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ScheduleUseCase = (*scheduleUC)(nil)

// ScheduleListing is what /list shows for the selected chat.
type ScheduleListing struct {
	ChatID    int64
	ChatTitle string
	Schedules []*model.Schedule
}

// ScheduleUseCase covers the document actions behind the /list buttons.
// Every action checks that the document's chat is bound to the acting user.
type ScheduleUseCase interface {
	ListSelected(ctx context.Context, userID int64) (*ScheduleListing, error)
	Get(ctx context.Context, userID int64, docID string) (*model.Schedule, error)
	Toggle(ctx context.Context, userID int64, docID string) (*model.Schedule, error)
	StartNow(ctx context.Context, userID int64, docID string) (*model.Schedule, error)
	Delete(ctx context.Context, userID int64, docID string) error
}

type scheduleUC struct {
	schedules repository.ScheduleRepository
	bindings  repository.BindingRepository
	states    repository.WizardStateRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewScheduleUseCase(
	schedules repository.ScheduleRepository,
	bindings repository.BindingRepository,
	states repository.WizardStateRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *scheduleUC {
	return &scheduleUC{schedules: schedules, bindings: bindings, states: states, tm: tm, log: logger}
}

func (u *scheduleUC) ListSelected(ctx context.Context, userID int64) (*ScheduleListing, error) {
	defer logging.TraceDuration(u.log, "ScheduleUC.ListSelected")()

	w, err := u.states.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !w.HasSelectedChat() {
		return nil, domain.ErrNoChatSelected
	}
	if err := requireBinding(ctx, u.bindings, repository.NoTX, userID, w.SelectedChatID); err != nil {
		return nil, err
	}

	items, err := u.schedules.ListByChat(ctx, repository.NoTX, w.SelectedChatID)
	if err != nil {
		return nil, err
	}
	listing := &ScheduleListing{ChatID: w.SelectedChatID, ChatTitle: w.SelectedChatTitle, Schedules: items}
	if len(items) == 0 {
		return listing, domain.ErrEmptyResult
	}
	return listing, nil
}

func (u *scheduleUC) Get(ctx context.Context, userID int64, docID string) (*model.Schedule, error) {
	defer logging.TraceDuration(u.log, "ScheduleUC.Get")()
	return ownedSchedule(ctx, u.schedules, u.bindings, repository.NoTX, userID, docID, false)
}

func (u *scheduleUC) Toggle(ctx context.Context, userID int64, docID string) (*model.Schedule, error) {
	defer logging.TraceDuration(u.log, "ScheduleUC.Toggle")()

	return u.mutate(ctx, userID, docID, func(s *model.Schedule) error {
		active, err := s.Toggle()
		if err != nil {
			return err
		}
		u.log.Info().Str("doc_id", docID).Int64("tg_id", userID).Bool("active", active).Msg("schedule toggled")
		return nil
	})
}

func (u *scheduleUC) StartNow(ctx context.Context, userID int64, docID string) (*model.Schedule, error) {
	defer logging.TraceDuration(u.log, "ScheduleUC.StartNow")()

	return u.mutate(ctx, userID, docID, func(s *model.Schedule) error {
		return s.Activate()
	})
}

func (u *scheduleUC) Delete(ctx context.Context, userID int64, docID string) error {
	defer logging.TraceDuration(u.log, "ScheduleUC.Delete")()

	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := ownedSchedule(ctx, u.schedules, u.bindings, tx, userID, docID, true); err != nil {
			return err
		}
		if err := u.schedules.Delete(ctx, tx, docID); err != nil {
			return err
		}
		u.log.Info().Str("doc_id", docID).Int64("tg_id", userID).Msg("schedule deleted")
		return nil
	})
}

// mutate runs fn on a locked copy of the document and writes it back.
func (u *scheduleUC) mutate(ctx context.Context, userID int64, docID string, fn func(s *model.Schedule) error) (*model.Schedule, error) {
	var out *model.Schedule
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := ownedSchedule(ctx, u.schedules, u.bindings, tx, userID, docID, true)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := u.schedules.Update(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// ownedSchedule loads docID and checks its chat is bound to userID.
// A document the user may not see is reported as not found.
func ownedSchedule(
	ctx context.Context,
	schedules repository.ScheduleRepository,
	bindings repository.BindingRepository,
	tx repository.Tx,
	userID int64,
	docID string,
	forUpdate bool,
) (*model.Schedule, error) {
	if docID == "" {
		return nil, domain.ErrNotFound
	}
	var (
		s   *model.Schedule
		err error
	)
	if forUpdate {
		s, err = schedules.FindByIDForUpdate(ctx, tx, docID)
	} else {
		s, err = schedules.FindByID(ctx, tx, docID)
	}
	if err != nil {
		return nil, err
	}
	if s.IsZero() {
		return nil, domain.ErrNotFound
	}
	if err := requireBinding(ctx, bindings, tx, userID, s.ChatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
