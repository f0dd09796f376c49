// Package cli provides the command-line interface for fieldnotes.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/fieldnotes/internal/cli/commands"
	"github.com/ccollicutt/fieldnotes/internal/cli/plugins"
	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()

	// An unknown first argument may name a plugin.
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' && !isBuiltinCommand(rootCmd, potentialCommand) {
			if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
				return plugins.Execute(ctx, pluginPath, os.Args[2:])
			}
			_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// SilenceErrors prevents Cobra from printing this.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	EnvFile   string
	LogLevel  string
	LogFormat string
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "fieldnotes",
		Short: "Clean ragged field observation records into tidy tables",
		Long: `fieldnotes turns raw, space-aligned observation records into a
rectangular table.

Each raw line carries a date range such as "10/5 - 10/7". fieldnotes splits
every line around that marker, pads records that lack trailing fields with
missing values, types the date columns using an implied year, and writes the
result as csv, json, xlsx or a database table. Wide tables can be reshaped to
long form with 'fieldnotes melt'.

Exit codes:
  0 - Success
  1 - Completed with warnings (date values nulled)
  2 - Configuration, input or runtime error

Environment:
  FIELDNOTES_INPUT, FIELDNOTES_OUTPUT_PATH, FIELDNOTES_OUTPUT_FORMAT,
  FIELDNOTES_IMPLIED_YEAR_SUFFIX, FIELDNOTES_WORKERS override the config file.
  FIELDNOTES_LOG_LEVEL and FIELDNOTES_LOG_FORMAT control logging.

PLUGINS:
  Unknown commands run a binary named fieldnotes-<command> if one is found in
  $FIELDNOTES_PLUGIN_DIR, next to the fieldnotes binary, in
  ~/.fieldnotes/plugins/ or in PATH.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Load environment variables from a .env file")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "Log format (text|json)")

	rootCmd.AddCommand(commands.NewCleanCommand())
	rootCmd.AddCommand(commands.NewMeltCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// setupLogging loads the optional .env file, then builds the logger from the
// environment and flags and stores it on the command context. Flags win over
// the environment.
func setupLogging(cmd *cobra.Command, opts *rootOptions) error {
	if opts.EnvFile != "" {
		if err := config.LoadDotEnv(opts.EnvFile); err != nil {
			return err
		}
	}

	logCfg, err := config.LoadLogConfig()
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		logCfg.Format = opts.LogFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Format(logCfg.Format), logCfg.Level)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger))
	return nil
}
