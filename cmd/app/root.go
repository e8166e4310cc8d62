package main

import (
	"fmt"

	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/infra/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	devMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "post-scheduler",
	Short: "Telegram bot that posts rotating content playlists to group chats",
	Long: `post-scheduler lets group admins register a chat, build playlists of
text, photos, videos and stickers in a private conversation with the bot,
and posts them on a fixed interval.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "developer mode (console logs, unredacted ids)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig() (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.Load(cfgPath, devMode)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	return cfg, logger, nil
}
