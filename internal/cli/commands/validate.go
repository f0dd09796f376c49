package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/fieldnotes/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a fieldnotes configuration file without cleaning anything.

Checks:
  - YAML syntax
  - Required fields and allowed values
  - Unique column names
  - Date columns are among the record columns
  - Output path differs from the input
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Input:   %s\n", cfg.Input)
	fmt.Fprintf(w, "  Marker:  %q (date width %d)\n", cfg.Record.Marker, cfg.Record.DateWidth)
	fmt.Fprintf(w, "  Columns: %d\n", len(cfg.Record.Columns))
	fmt.Fprintf(w, "  Workers: %d\n", cfg.Workers)

	fmt.Fprintf(w, "\nColumns:\n")
	dateCols := make(map[string]bool, len(cfg.Dates.Columns))
	for _, c := range cfg.Dates.Columns {
		dateCols[c] = true
	}
	for i, name := range cfg.Record.Columns {
		kind := "text"
		if dateCols[name] {
			kind = "date"
		}
		fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, name, kind)
	}

	fmt.Fprintf(w, "\nDates: %s + %q parsed as %q (on_error: %s)\n",
		strings.Join(cfg.Dates.Columns, ", "), cfg.Dates.ImpliedYearSuffix, cfg.Dates.Layout, cfg.Dates.OnError)

	if cfg.Output.Format == config.OutputFormatDB {
		fmt.Fprintf(w, "Output: db table %q\n", cfg.Output.Table)
	} else {
		fmt.Fprintf(w, "Output: %s (%s, missing as %q)\n", cfg.Output.Path, cfg.Output.Format, cfg.Output.MissingValue)
	}

	for _, wh := range cfg.Webhooks {
		fmt.Fprintf(w, "Webhook: %s (trigger %s)\n", wh.URL, wh.Trigger)
	}

	if info, err := os.Stat(cfg.Input); err != nil {
		fmt.Fprintf(w, "\nWarning: input file not accessible: %v\n", err)
	} else if info.IsDir() {
		fmt.Fprintf(w, "\nWarning: input path is a directory\n")
	}

	return nil
}
