package main

import (
	"os"

	"telegram-post-scheduler/internal/infra/metrics"
)

var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
)

func main() {
	metrics.SetBuildInfo(Version, Commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
