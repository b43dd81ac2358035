package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/basilica-ai/minercheck/internal/probes"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minercheck",
		Short: "minercheck - health check for Basilica miner hosts",
		Long: `minercheck verifies that a Basilica miner host is ready to serve.

It checks system requirements, the node SSH key, connectivity and GPUs on
every configured node, the Bittensor wallet and the miner service, then
prints a report. The exit status is 0 only when every check passed.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newCheckCommand(probes.Deps{}))
	cmd.AddCommand(newConfigCommand())

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
