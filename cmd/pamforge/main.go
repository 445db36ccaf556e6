package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"github.com/systmms/pamforge/cmd/pamforge/commands"
	"github.com/systmms/pamforge/internal/config"
	"github.com/systmms/pamforge/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitInterrupted distinguishes an operator interrupt from a run
// failure so callers can tell the two apart.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	stop()
	memguard.Purge()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted")
			os.Exit(exitInterrupted)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		logFile        string
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "pamforge",
		Short: "Generate PAM onboarding artifacts for review before execution",
		Long: `pamforge converts a CSV of host/credential tuples into a bulk-onboarding
bundle for Keeper PAM: a record import JSON and the ordered keeper
commands that import, configure, connect and rotate those records.
Everything is generated offline so a human can review before execution.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)
			if logFile != "" {
				if err := logger.AttachFile(logFile); err != nil {
					return err
				}
			}

			cfg.Path = configFile
			cfg.Logger = logger
			cfg.LogFile = logFile
			cfg.NonInteractive = nonInteractive
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "pamforge.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (generate defaults to a per-run file)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	// Add commands
	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewGenerateCommand(cfg),
		commands.NewProbeCommand(cfg),
		commands.NewShredCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.ExecuteContext(ctx)
}
