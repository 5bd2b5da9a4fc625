// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI. Each invocation
// runs one digest cycle and exits; scheduling is left to cron.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the pipeline.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Email a digest of recent papers relevant to a research interest",
	Long: `paper-digest retrieves the papers submitted for a search query over the last
lookback_days days, asks an oracle service whether each one is relevant,
summarizes the relevant ones, and emails a single digest.

Failures of individual papers or services are logged and skipped; only
configuration errors make the command exit non-zero.`,
	SilenceUsage: true,
	RunE:         runDigest,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: paper-digest.{yaml,json} in ., ./app or ~/.config/paper-digest)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
