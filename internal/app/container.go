// Package app wires configuration, storage and transports into a runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-post-scheduler/internal/application"
	"telegram-post-scheduler/internal/config"
	tele "telegram-post-scheduler/internal/infra/adapters/telegram"
	pg "telegram-post-scheduler/internal/infra/db/postgres"
	httpapi "telegram-post-scheduler/internal/infra/http"
	"telegram-post-scheduler/internal/infra/i18n"
	"telegram-post-scheduler/internal/infra/metrics"
	red "telegram-post-scheduler/internal/infra/redis"
	"telegram-post-scheduler/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// Container owns every long-lived dependency of a process.
type Container struct {
	Cfg *config.Config
	Log *zerolog.Logger

	Pool  *pgxpool.Pool
	Redis *red.Client

	// API is nil in noop mode.
	API     *tgbotapi.BotAPI
	Bot     tele.BotAPI
	Facade  *application.BotFacade
	Adapter *tele.RealTelegramBotAdapter
	Auth    *httpapi.TickAuth // nil when no tick secret is configured
}

// New connects to Postgres, Redis and Telegram and builds the usecase graph.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	metrics.MustRegister()

	c := &Container{Cfg: cfg, Log: logger}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	c.Pool = pool
	if err := pg.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	c.Redis = redisClient

	// ---- Telegram API ----
	if strings.EqualFold(cfg.Bot.Mode, "noop") {
		logger.Warn().Msg("bot.mode=noop: telegram calls are logged, not sent")
		c.Bot = tele.NewNoopAPI(logger)
	} else {
		api, err := tele.NewBotAPI(&cfg.Bot)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		c.API, c.Bot = api, api
	}

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	schedules := pg.NewScheduleRepo(pool)
	bindings := pg.NewBindingRepoCacheDecorator(pg.NewBindingRepo(pool), redisClient, cfg.Redis.CacheTTL, logger)
	states := red.NewWizardStateRepo(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient, 1)

	// ---- Use cases ----
	sender := tele.NewSender(c.Bot, cfg.Bot.SendRPS, logger)
	bindingUC := usecase.NewBindingUseCase(bindings, states, tele.NewAdminChecker(c.Bot), logger)
	scheduleUC := usecase.NewScheduleUseCase(schedules, bindings, states, tm, logger)
	wizardUC := usecase.NewWizardUseCase(states, schedules, bindings, tm, logger)
	pollerUC := usecase.NewPollerUseCase(schedules, sender, locker, usecase.PollerOptions{
		Concurrency: cfg.Poller.Concurrency,
		LockTTL:     cfg.Poller.LockTTL,
	}, logger)
	c.Facade = application.NewBotFacade(bindingUC, scheduleUC, wizardUC, pollerUC)

	// ---- Bot adapter ----
	c.Adapter, err = tele.NewRealTelegramBotAdapter(
		c.Bot, &cfg.Bot, cfg.RateLimit, c.Facade, translator, red.NewRateLimiter(redisClient), logger,
	)
	if err != nil {
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	if cfg.Poller.TickSecret != "" {
		if c.Auth, err = httpapi.NewTickAuth(cfg.Poller.TickSecret); err != nil {
			return nil, err
		}
	} else if cfg.Poller.Mode == "external" {
		logger.Warn().Msg("poller.tick_secret is empty: /cron/tick is disabled")
	}

	go pg.ReportPoolStats(ctx, pool, 15*time.Second)
	ok = true
	return c, nil
}

// HTTPServer builds the webhook/tick/metrics server over the container.
func (c *Container) HTTPServer() *httpapi.Server {
	return httpapi.NewServer(c.Cfg.HTTP, c.Cfg.Webhook.Secret, httpapi.Deps{
		Updates: c.Adapter,
		Ticker:  c.Facade,
		Auth:    c.Auth,
		Health:  c.Ping,
	}, c.Log)
}

// Ping checks both stores.
func (c *Container) Ping(ctx context.Context) error {
	var errs []error
	if c.Pool != nil {
		if err := c.Pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("redis close")
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
