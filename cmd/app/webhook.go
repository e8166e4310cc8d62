package main

import (
	tele "telegram-post-scheduler/internal/infra/adapters/telegram"

	"github.com/spf13/cobra"
)

var (
	webhookURL  string
	dropPending bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook registration",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Point Telegram at webhook.url with the configured secret token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		url := cfg.Webhook.URL
		if webhookURL != "" {
			url = webhookURL
		}
		api, err := tele.NewBotAPI(&cfg.Bot)
		if err != nil {
			return err
		}
		if err := tele.SetWebhook(api, url, cfg.Webhook.Secret, dropPending); err != nil {
			return err
		}
		logger.Info().Str("url", url).Bool("secret", cfg.Webhook.Secret != "").Msg("webhook registered")
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook so the bot can long-poll",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		api, err := tele.NewBotAPI(&cfg.Bot)
		if err != nil {
			return err
		}
		if err := tele.DeleteWebhook(api, dropPending); err != nil {
			return err
		}
		logger.Info().Msg("webhook deleted")
		return nil
	},
}

func init() {
	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "override webhook.url")
	webhookCmd.PersistentFlags().BoolVar(&dropPending, "drop-pending", false, "drop updates queued while no receiver was registered")
	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}
