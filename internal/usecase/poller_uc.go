package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/worker"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ PollerUseCase = (*pollerUC)(nil)

const tickLockKey = "poller:tick"

// TickReport summarises one poller pass.
type TickReport struct {
	Scanned     int  `json:"scanned"`
	Due         int  `json:"due"` // documents acted on, including empty ones
	Sent        int  `json:"sent"`
	Deactivated int  `json:"deactivated"`
	Failed      int  `json:"failed"`
	Skipped     int  `json:"skipped"`          // lost a version race
	Active      *int `json:"active,omitempty"` // nil when the count failed
}

// PollerUseCase scans active schedules and posts the ones that are due.
type PollerUseCase interface {
	Tick(ctx context.Context, now time.Time) (TickReport, error)
}

type PollerOptions struct {
	Concurrency int
	LockTTL     time.Duration
}

type pollerUC struct {
	schedules repository.ScheduleRepository
	sender    adapter.ContentSender
	locker    repository.Locker // optional
	opts      PollerOptions
	log       *zerolog.Logger
}

func NewPollerUseCase(
	schedules repository.ScheduleRepository,
	sender adapter.ContentSender,
	locker repository.Locker,
	opts PollerOptions,
	logger *zerolog.Logger,
) *pollerUC {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	return &pollerUC{schedules: schedules, sender: sender, locker: locker, opts: opts, log: logger}
}

type outcome int

const (
	outcomeNotDue outcome = iota
	outcomeSent
	outcomeDeactivated
	outcomeFailed
	outcomeSkipped
)

// Tick runs one pass. Documents are independent: a failure on one never
// stops the others. It returns domain.ErrLockHeld when another pass is running.
func (u *pollerUC) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	defer logging.TraceDuration(u.log, "PollerUC.Tick")()

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, tickLockKey, u.opts.LockTTL)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			return TickReport{}, err
		case err != nil:
			u.log.Warn().Err(err).Msg("tick lock unavailable, running unguarded")
		default:
			defer func() {
				if err := u.locker.Unlock(context.WithoutCancel(ctx), tickLockKey, token); err != nil {
					u.log.Warn().Err(err).Msg("tick unlock failed")
				}
			}()
		}
	}

	active, err := u.schedules.ListActive(ctx, repository.NoTX)
	if err != nil {
		return TickReport{}, err
	}

	ts := now.Unix()
	report := TickReport{Scanned: len(active)}
	outcomes := make([]outcome, len(active))
	tasks := make([]worker.Task, len(active))
	for i, s := range active {
		i, s := i, s
		tasks[i] = func(ctx context.Context) error {
			outcomes[i] = u.process(ctx, s, ts)
			return nil
		}
	}
	worker.Run(ctx, u.opts.Concurrency, tasks)

	for _, o := range outcomes {
		if o != outcomeNotDue {
			report.Due++
		}
		switch o {
		case outcomeSent:
			report.Sent++
		case outcomeDeactivated:
			report.Deactivated++
		case outcomeFailed:
			report.Failed++
		case outcomeSkipped:
			report.Skipped++
		}
	}

	if n, err := u.schedules.CountActive(ctx, repository.NoTX); err != nil {
		u.log.Warn().Err(err).Msg("count active schedules failed")
	} else {
		report.Active = &n
	}

	u.log.Info().
		Int("scanned", report.Scanned).
		Int("due", report.Due).
		Int("sent", report.Sent).
		Int("deactivated", report.Deactivated).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("poller tick finished")
	return report, nil
}

func (u *pollerUC) process(ctx context.Context, s *model.Schedule, now int64) outcome {
	log := u.log.With().Str("doc_id", s.ID).Int64("chat_id", s.ChatID).Logger()

	if len(s.ContentItems) == 0 {
		s.Deactivate()
		s.CurrentIndex = 0
		if o := u.write(ctx, &log, s, outcomeDeactivated); o != outcomeDeactivated {
			return o
		}
		log.Warn().Msg("empty schedule deactivated")
		return outcomeDeactivated
	}
	if !s.IsDue(now) {
		return outcomeNotDue
	}

	item, _ := s.Current()
	err := u.sender.SendContent(ctx, s.ChatID, item)
	switch {
	case err == nil:
		s.Advance(now)
		return u.write(ctx, &log, s, outcomeSent)

	case errors.Is(err, domain.ErrPlatformRejected):
		log.Warn().Err(err).Msg("destination rejected the post, deactivating")
		s.Deactivate()
		return u.write(ctx, &log, s, outcomeDeactivated)

	default:
		log.Warn().Err(err).Int("index", s.CurrentIndex).Msg("send failed, retrying next tick")
		return outcomeFailed
	}
}

// write persists s with a version check; a lost race leaves the document for the next tick.
func (u *pollerUC) write(ctx context.Context, log *zerolog.Logger, s *model.Schedule, ok outcome) outcome {
	err := u.schedules.Update(ctx, repository.NoTX, s)
	switch {
	case err == nil:
		return ok
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
		log.Info().Err(err).Msg("schedule changed during tick, skipped")
		return outcomeSkipped
	default:
		log.Error().Err(err).Msg("failed to persist schedule")
		return outcomeFailed
	}
}
