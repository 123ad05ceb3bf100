package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// rootFlags are shared across subcommands, mirroring cli.rs's Cli struct's
// global-ish defaults (clap itself doesn't have any top-level flags here).
// --log-file/--log-level/--run-id are accepted by both run and apply, but
// only run reads them; apply writes no log.
type rootFlags struct {
	logFile  string
	logLevel string
	runID    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shephard",
		Short: "Sync many git repositories from one place",
	}

	flags := &rootFlags{}
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "path to the rotating log file (default: XDG state dir)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.runID, "run-id", "", "correlation id shared across hosts (default: a fresh UUID)")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newApplyCmd(flags))

	return root
}

func resolveRunID(flags *rootFlags) string {
	if flags.runID != "" {
		return flags.runID
	}
	return uuid.NewString()
}
