package usecase

import (
	"context"
	"errors"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ WizardUseCase = (*wizardUC)(nil)

// WizardReply is what the router should say after a wizard step.
type WizardReply struct {
	// Handled is false when the user was idle and the message was not for the wizard.
	Handled bool
	// Prompts are translation keys, in order.
	Prompts []string
	// Offer is set when the user should choose between starting now or later.
	Offer *model.OfferStart
}

// WizardUseCase drives the content wizard and performs the effects of each step.
type WizardUseCase interface {
	Session(ctx context.Context, userID int64) (model.WizardSession, error)
	StartNew(ctx context.Context, userID int64, ct model.ContentType) (WizardReply, error)
	StartAdd(ctx context.Context, userID int64, docID string) (WizardReply, error)
	Receive(ctx context.Context, userID int64, item model.ContentItem) (WizardReply, error)
	Leave(ctx context.Context, userID int64) (bool, error)
}

type wizardUC struct {
	states    repository.WizardStateRepository
	schedules repository.ScheduleRepository
	bindings  repository.BindingRepository
	tm        repository.TransactionManager
	newID     func() string
	log       *zerolog.Logger
}

func NewWizardUseCase(
	states repository.WizardStateRepository,
	schedules repository.ScheduleRepository,
	bindings repository.BindingRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *wizardUC {
	return &wizardUC{
		states:    states,
		schedules: schedules,
		bindings:  bindings,
		tm:        tm,
		newID:     func() string { return ulid.Make().String() },
		log:       logger,
	}
}

func (u *wizardUC) Session(ctx context.Context, userID int64) (model.WizardSession, error) {
	return u.states.Get(ctx, userID)
}

func (u *wizardUC) StartNew(ctx context.Context, userID int64, ct model.ContentType) (WizardReply, error) {
	defer logging.TraceDuration(u.log, "WizardUC.StartNew")()
	return u.step(ctx, userID, model.EnterNew{ContentType: ct})
}

func (u *wizardUC) StartAdd(ctx context.Context, userID int64, docID string) (WizardReply, error) {
	defer logging.TraceDuration(u.log, "WizardUC.StartAdd")()

	s, err := ownedSchedule(ctx, u.schedules, u.bindings, repository.NoTX, userID, docID, false)
	if err != nil {
		return WizardReply{}, err
	}
	return u.step(ctx, userID, model.EnterAdd{DocID: s.ID, ContentType: s.ContentType})
}

func (u *wizardUC) Receive(ctx context.Context, userID int64, item model.ContentItem) (WizardReply, error) {
	defer logging.TraceDuration(u.log, "WizardUC.Receive")()
	return u.step(ctx, userID, model.ContentReceived{Item: item, NewDocID: u.newID()})
}

// Leave closes any open scene and reports whether one was open.
func (u *wizardUC) Leave(ctx context.Context, userID int64) (bool, error) {
	w, err := u.states.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !w.InScene() {
		return false, nil
	}
	next, _, _ := model.Transition(w, model.Leave{})
	return true, u.states.Set(ctx, userID, next)
}

func (u *wizardUC) step(ctx context.Context, userID int64, ev model.WizardEvent) (WizardReply, error) {
	w, err := u.states.Get(ctx, userID)
	if err != nil {
		return WizardReply{}, err
	}
	if _, ok := ev.(model.ContentReceived); ok && !w.InScene() {
		return WizardReply{}, nil
	}

	next, effects, terr := model.Transition(w, ev)
	reply := WizardReply{Handled: true}
	if terr == nil {
		if err := u.apply(ctx, userID, effects, &reply); err != nil {
			// Abort the flow so a half-applied step is not resumed.
			aborted, _, _ := model.Transition(w, model.Leave{})
			if serr := u.states.Set(ctx, userID, aborted); serr != nil {
				u.log.Error().Err(serr).Int64("tg_id", userID).Msg("failed to reset wizard session")
			}
			return reply, err
		}
	}
	if next != w {
		if err := u.states.Set(ctx, userID, next); err != nil {
			return reply, err
		}
	}
	return reply, terr
}

func (u *wizardUC) apply(ctx context.Context, userID int64, effects []model.Effect, reply *WizardReply) error {
	for _, eff := range effects {
		switch e := eff.(type) {
		case model.CreateSchedule:
			if err := requireBinding(ctx, u.bindings, repository.NoTX, userID, e.ChatID); err != nil {
				return err
			}
			s, err := model.NewSchedule(e.DocID, e.ChatID, userID, e.ChatTitle, e.Item)
			if err != nil {
				return err
			}
			if err := u.schedules.Create(ctx, repository.NoTX, s); err != nil {
				return err
			}
			u.log.Info().Str("doc_id", s.ID).Int64("chat_id", s.ChatID).Str("type", string(s.ContentType)).Msg("schedule created")

		case model.AppendItem:
			err := u.mutate(ctx, userID, e.DocID, func(s *model.Schedule) error { return s.AppendItem(e.Item) })
			if err != nil {
				return err
			}

		case model.SetInterval:
			err := u.mutate(ctx, userID, e.DocID, func(s *model.Schedule) error { return s.SetInterval(e.Seconds) })
			if err != nil {
				return err
			}

		case model.OfferStart:
			offer := e
			reply.Offer = &offer

		case model.Prompt:
			reply.Prompts = append(reply.Prompts, e.Key)

		default:
			return errors.New("unknown wizard effect")
		}
	}
	return nil
}

func (u *wizardUC) mutate(ctx context.Context, userID int64, docID string, fn func(s *model.Schedule) error) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := ownedSchedule(ctx, u.schedules, u.bindings, tx, userID, docID, true)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		return u.schedules.Update(ctx, tx, s)
	})
}

// IsUserFacing reports whether err should be turned into a reply rather than logged as a fault.
func IsUserFacing(err error) bool {
	for _, target := range []error{
		domain.ErrValidation, domain.ErrPermission, domain.ErrContext, domain.ErrNotFound,
		domain.ErrEmptyResult, domain.ErrNoChatSelected,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
