package main

import (
	"encoding/json"
	"os"
	"time"

	"telegram-post-scheduler/internal/app"
	"telegram-post-scheduler/internal/application"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one poller pass and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		report, err := c.Facade.RunTick(cmd.Context(), application.TickSourceCLI, time.Now())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}
