package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"telegram-post-scheduler/internal/app"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/sched"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: HTTP endpoints, updates and (optionally) the in-process poller",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	errc := make(chan error, 3)

	// ---- HTTP: webhook, tick, health, metrics ----
	srv := c.HTTPServer()
	go func() { errc <- srv.Start() }()

	// ---- Updates ----
	if cfg.Bot.Mode == "polling" {
		go func() {
			if err := c.Adapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errc <- err
			}
		}()
	} else if err := c.Adapter.SetMenuCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to set menu commands")
	}

	// ---- In-process poller ----
	if cfg.Poller.Mode == "internal" {
		worker, err := sched.NewPollWorker(cfg.Poller.Cron, cfg.Poller.LockTTL, c.Facade, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errc <- err
			}
		}()
	}

	logger.Info().
		Str("bot", cfg.Bot.Username).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Str("bot_mode", cfg.Bot.Mode).
		Str("poller_mode", cfg.Poller.Mode).
		Msg("post scheduler started")

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err = <-errc:
		logger.Error().Err(err).Msg("component failed, shutting down")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn().Err(serr).Msg("http shutdown")
	}
	return err
}
