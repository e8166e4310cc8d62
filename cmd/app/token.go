package main

import (
	"fmt"
	"time"

	httpapi "telegram-post-scheduler/internal/infra/http"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for POST /cron/tick",
	Long: `Mint a bearer token for POST /cron/tick, signed with poller.tick_secret.
A zero --ttl mints a token without expiry, for schedulers configured once.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		auth, err := httpapi.NewTickAuth(cfg.Poller.TickSecret)
		if err != nil {
			return err
		}
		tok, err := auth.Mint(tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "scheduler", "token subject, logged by the tick endpoint on failures")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (0 = no expiry)")
}
