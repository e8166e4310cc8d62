package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/infra/metrics"
	"telegram-post-scheduler/internal/usecase"
)

var _ Facade = (*BotFacade)(nil)

// Tick sources, used as metric labels.
const (
	TickSourceHTTP = "http"
	TickSourceCron = "cron"
	TickSourceCLI  = "cli"
)

// BotFacade composes usecases into the operations the bot and the tick endpoints expose.
type BotFacade struct {
	BindingUC  usecase.BindingUseCase
	ScheduleUC usecase.ScheduleUseCase
	WizardUC   usecase.WizardUseCase
	PollerUC   usecase.PollerUseCase
}

// NewBotFacade constructs a facade from provided usecases. Any of them can be nil
// for processes that do not need it (methods that use them return errors).
func NewBotFacade(
	bindingUC usecase.BindingUseCase,
	scheduleUC usecase.ScheduleUseCase,
	wizardUC usecase.WizardUseCase,
	pollerUC usecase.PollerUseCase,
) *BotFacade {
	return &BotFacade{
		BindingUC:  bindingUC,
		ScheduleUC: scheduleUC,
		WizardUC:   wizardUC,
		PollerUC:   pollerUC,
	}
}

var errUnavailable = errors.New("usecase not available")

func (b *BotFacade) RegisterChat(ctx context.Context, req usecase.RegisterChat) (*model.Binding, error) {
	if b.BindingUC == nil {
		return nil, fmt.Errorf("binding %w", errUnavailable)
	}
	bnd, err := b.BindingUC.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.IncBindingRegistered()
	return bnd, nil
}

func (b *BotFacade) ManageTargets(ctx context.Context, userID int64) ([]*model.Binding, error) {
	if b.BindingUC == nil {
		return nil, fmt.Errorf("binding %w", errUnavailable)
	}
	return b.BindingUC.List(ctx, userID)
}

func (b *BotFacade) SelectChat(ctx context.Context, userID, chatID int64) (*model.Binding, error) {
	if b.BindingUC == nil {
		return nil, fmt.Errorf("binding %w", errUnavailable)
	}
	return b.BindingUC.Select(ctx, userID, chatID)
}

func (b *BotFacade) ListSchedules(ctx context.Context, userID int64) (*usecase.ScheduleListing, error) {
	if b.ScheduleUC == nil {
		return nil, fmt.Errorf("schedule %w", errUnavailable)
	}
	return b.ScheduleUC.ListSelected(ctx, userID)
}

func (b *BotFacade) ToggleSchedule(ctx context.Context, userID int64, docID string) (*model.Schedule, error) {
	if b.ScheduleUC == nil {
		return nil, fmt.Errorf("schedule %w", errUnavailable)
	}
	return b.ScheduleUC.Toggle(ctx, userID, docID)
}

func (b *BotFacade) StartNow(ctx context.Context, userID int64, docID string) (*model.Schedule, error) {
	if b.ScheduleUC == nil {
		return nil, fmt.Errorf("schedule %w", errUnavailable)
	}
	return b.ScheduleUC.StartNow(ctx, userID, docID)
}

func (b *BotFacade) DeleteSchedule(ctx context.Context, userID int64, docID string) error {
	if b.ScheduleUC == nil {
		return fmt.Errorf("schedule %w", errUnavailable)
	}
	return b.ScheduleUC.Delete(ctx, userID, docID)
}

func (b *BotFacade) StartNew(ctx context.Context, userID int64, ct model.ContentType) (usecase.WizardReply, error) {
	if b.WizardUC == nil {
		return usecase.WizardReply{}, fmt.Errorf("wizard %w", errUnavailable)
	}
	return b.WizardUC.StartNew(ctx, userID, ct)
}

func (b *BotFacade) StartAdd(ctx context.Context, userID int64, docID string) (usecase.WizardReply, error) {
	if b.WizardUC == nil {
		return usecase.WizardReply{}, fmt.Errorf("wizard %w", errUnavailable)
	}
	return b.WizardUC.StartAdd(ctx, userID, docID)
}

func (b *BotFacade) Receive(ctx context.Context, userID int64, item model.ContentItem) (usecase.WizardReply, error) {
	if b.WizardUC == nil {
		return usecase.WizardReply{}, fmt.Errorf("wizard %w", errUnavailable)
	}
	return b.WizardUC.Receive(ctx, userID, item)
}

// Cancel leaves the current wizard scene, reporting whether one was open.
func (b *BotFacade) Cancel(ctx context.Context, userID int64) (bool, error) {
	if b.WizardUC == nil {
		return false, fmt.Errorf("wizard %w", errUnavailable)
	}
	return b.WizardUC.Leave(ctx, userID)
}

// RunTick performs one poller pass and records its metrics under source.
func (b *BotFacade) RunTick(ctx context.Context, source string, now time.Time) (usecase.TickReport, error) {
	if b.PollerUC == nil {
		return usecase.TickReport{}, fmt.Errorf("poller %w", errUnavailable)
	}
	start := time.Now()
	report, err := b.PollerUC.Tick(ctx, now)
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		metrics.IncPollerTick(source, "locked")
		return report, err
	case err != nil:
		metrics.IncPollerTick(source, "error")
		return report, err
	}

	metrics.IncPollerTick(source, "ok")
	metrics.ObservePollerTick(time.Since(start).Seconds())
	metrics.AddPollerDocuments("sent", report.Sent)
	metrics.AddPollerDocuments("deactivated", report.Deactivated)
	metrics.AddPollerDocuments("failed", report.Failed)
	metrics.AddPollerDocuments("skipped", report.Skipped)
	if report.Active != nil {
		metrics.SetActiveSchedules(*report.Active)
	}
	return report, nil
}
