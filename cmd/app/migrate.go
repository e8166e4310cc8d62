package main

import (
	"errors"

	pg "telegram-post-scheduler/internal/infra/db/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return errors.New("database.url is required")
		}
		pool, err := pg.NewPgxPool(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		logger.Info().Msg("schema is up to date")
		return nil
	},
}
