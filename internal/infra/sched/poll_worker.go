package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-post-scheduler/internal/application"
	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/usecase"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Ticker runs one poller pass.
type Ticker interface {
	RunTick(ctx context.Context, source string, now time.Time) (usecase.TickReport, error)
}

// cronParser accepts 5 or 6 field expressions and descriptors such as "@every 1m".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// PollWorker drives the poller in-process on a cron schedule, for deployments
// without an external timer calling /cron/tick.
type PollWorker struct {
	spec    string
	timeout time.Duration
	ticker  Ticker
	cron    *cron.Cron
	log     *zerolog.Logger
}

func NewPollWorker(spec string, timeout time.Duration, ticker Ticker, logger *zerolog.Logger) (*PollWorker, error) {
	if _, err := cronParser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid poller cron %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	l := logger.With().Str("component", "PollWorker").Logger()
	return &PollWorker{
		spec:    spec,
		timeout: timeout,
		ticker:  ticker,
		// A slow pass makes the next firing a no-op instead of stacking passes.
		cron: cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  &l,
	}, nil
}

// Run blocks until ctx is cancelled, then waits for a running pass to finish.
func (w *PollWorker) Run(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, func() { w.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule poller: %w", err)
	}
	w.log.Info().Str("cron", w.spec).Msg("Starting poll worker")
	w.cron.Start()

	<-ctx.Done()
	w.log.Info().Msg("Stopping poll worker")
	<-w.cron.Stop().Done()
	return ctx.Err()
}

func (w *PollWorker) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	report, err := w.ticker.RunTick(ctx, application.TickSourceCron, time.Now())
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		w.log.Debug().Msg("poll skipped, another pass holds the lock")
	case err != nil:
		w.log.Error().Err(err).Msg("poll worker error")
	case report.Due > 0:
		w.log.Info().
			Int("due", report.Due).
			Int("sent", report.Sent).
			Int("deactivated", report.Deactivated).
			Int("failed", report.Failed).
			Msg("poll pass finished")
	}
}
