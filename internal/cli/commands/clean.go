package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
	"github.com/ccollicutt/fieldnotes/pkg/output"
	"github.com/ccollicutt/fieldnotes/pkg/pipeline"
	"github.com/ccollicutt/fieldnotes/pkg/tableio"
	"github.com/ccollicutt/fieldnotes/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// CleanOptions holds command-line options for the clean command.
type CleanOptions struct {
	Input   string
	Out     string
	Format  string
	Force   bool
	Workers int

	Output  string
	Verbose bool
	Quiet   bool

	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	opts := &CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean <config-file>",
		Short: "Clean a raw observation file into a table",
		Long: `Clean a raw observation file according to the configuration file.

Every line is split around its date-range marker into the configured columns.
Lines lacking trailing fields are padded with missing values, and the date
columns are typed using the implied year suffix. The cleaned table is written
only if every line parsed; a malformed line aborts the run with no output.

Exit codes:
  0 - Table written, no issues
  1 - Table written, some date values nulled (dates.on_error: warn)
  2 - Configuration, parse or write error

Webhooks configured under 'webhooks:' or given with --webhook-url receive the
run report as JSON once the table is written. A failed delivery is logged and
does not change the exit code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Raw input file (overrides config)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (overrides config)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: csv|json|xlsx|db (overrides config)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing output file")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Parse with this many goroutines (overrides config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Report format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List padded lines and run metadata")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "POST the run report to this URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for --webhook-url")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire --webhook-url (on_issues|always|never)")

	return cmd
}

func runClean(cmd *cobra.Command, args []string, opts *CleanOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	runID := output.NewRunID()
	logger := logging.FromContext(ctx).With(slog.String("run_id", runID))

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, configPath, cleanOverrides(cmd, opts)...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("reading input", slog.String("path", cfg.Input))
	lines, err := tableio.ReadLines(ctx, cfg.Input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := pipeline.New(cfg, pipeline.WithLogger(logger)).Run(ctx, lines)
	if err != nil {
		return fmt.Errorf("cleaning %s: %w", cfg.Input, err)
	}

	dest, err := writeTable(ctx, cfg, result, opts.Force, logger)
	if err != nil {
		return err
	}

	report := output.NewReport(result, output.Metadata{
		RunID:      runID,
		ConfigFile: configPath,
		Input:      cfg.Input,
		Output:     dest,
		Format:     string(cfg.Output.Format),
		StartedAt:  started,
		Duration:   time.Since(started),
	})

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	webhook.NewClient(webhook.WithLogger(logger)).Notify(ctx, report, cfg.Webhooks)

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

// cleanOverrides turns the flags that were set into config overrides.
func cleanOverrides(cmd *cobra.Command, opts *CleanOptions) []config.Override {
	var overrides []config.Override
	if opts.Input != "" {
		overrides = append(overrides, func(c *config.Config) { c.Input = opts.Input })
	}
	if opts.Out != "" {
		overrides = append(overrides, func(c *config.Config) { c.Output.Path = opts.Out })
	}
	if opts.Format != "" {
		overrides = append(overrides, func(c *config.Config) { c.Output.Format = config.OutputFormat(opts.Format) })
	}
	if cmd.Flags().Changed("workers") {
		overrides = append(overrides, func(c *config.Config) { c.Workers = opts.Workers })
	}
	if opts.WebhookURL != "" {
		overrides = append(overrides, func(c *config.Config) {
			c.Webhooks = append(c.Webhooks, config.WebhookConfig{
				Name:    "cli",
				URL:     opts.WebhookURL,
				Token:   opts.WebhookToken,
				Trigger: config.WebhookTrigger(opts.WebhookTrigger),
			})
		})
	}
	return overrides
}

// writeTable writes the cleaned table to its configured destination and
// returns a description of where it went.
func writeTable(ctx context.Context, cfg *config.Config, result *pipeline.Result, force bool, logger *slog.Logger) (string, error) {
	if cfg.Output.Format == config.OutputFormatDB {
		db, err := tableio.OpenDB(ctx, cfg.Output.DBURL, logger)
		if err != nil {
			return "", fmt.Errorf("opening output database: %w", err)
		}
		defer func() {
			if err := tableio.CloseDB(db); err != nil {
				logger.Warn("closing output database", slog.Any("error", err))
			}
		}()

		err = tableio.WriteDB(ctx, db, result.Table, tableio.DBOptions{
			Table:      cfg.Output.Table,
			DateLayout: cfg.Output.DateLayout,
			Logger:     logger,
		})
		if err != nil {
			return "", fmt.Errorf("writing output: %w", err)
		}
		logger.Info("table written", slog.String("table", cfg.Output.Table), slog.Int("rows", result.Table.NumRows()))
		return "table " + cfg.Output.Table, nil
	}

	err := tableio.WriteFile(ctx, result.Table, cfg.Output.Path, tableio.WriteOptions{
		Format:       tableio.Format(cfg.Output.Format),
		MissingValue: cfg.Output.MissingValue,
		DateLayout:   cfg.Output.DateLayout,
		Sheet:        cfg.Output.Sheet,
		Input:        cfg.Input,
		Overwrite:    force,
	})
	if err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	logger.Info("table written", slog.String("path", cfg.Output.Path), slog.Int("rows", result.Table.NumRows()))
	return cfg.Output.Path, nil
}
