package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
	"github.com/ccollicutt/fieldnotes/pkg/table"
	"github.com/ccollicutt/fieldnotes/pkg/tableio"
)

// MeltOptions holds command-line options for the melt command.
type MeltOptions struct {
	IDColumns    []string
	ValueColumns []string
	VarName      string
	ValueName    string
	Out          string
	Format       string
	Sheet        string
	MissingValue string
	Force        bool
}

// NewMeltCommand creates the melt command.
func NewMeltCommand() *cobra.Command {
	opts := &MeltOptions{}

	cmd := &cobra.Command{
		Use:   "melt <wide-table>",
		Short: "Reshape a wide table into long form",
		Long: `Reshape a wide csv or xlsx table into long form.

Every input row becomes one output row per value column, holding the id
columns, the value column's name and its cell. Rows are emitted in input
order, and value columns in column order.

Example:
  fieldnotes melt injuries.csv --id sex --var-name status --value-name count
  fieldnotes melt survey.xlsx --sheet totals --id site --value spring --value autumn --out long.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMelt(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.IDColumns, "id", nil, "Id column carried onto every row (can be repeated)")
	cmd.Flags().StringSliceVar(&opts.ValueColumns, "value", nil, "Value column to pivot (can be repeated; default: all non-id columns)")
	cmd.Flags().StringVar(&opts.VarName, "var-name", "variable", "Name of the output column holding the source column name")
	cmd.Flags().StringVar(&opts.ValueName, "value-name", "value", "Name of the output column holding the cell")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: csv to stdout)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: csv|json|xlsx (default: from --out extension)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Worksheet to read from an xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&opts.MissingValue, "missing-value", config.DefaultMissingValue, "Text that marks a missing cell")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing output file")

	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runMelt(cmd *cobra.Command, args []string, opts *MeltOptions) error {
	inputPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	wide, err := tableio.ReadFile(inputPath, tableio.ReadOptions{
		MissingValue: opts.MissingValue,
		Sheet:        opts.Sheet,
	})
	if err != nil {
		return fmt.Errorf("reading wide table: %w", err)
	}

	long, err := table.Melt(wide, table.MeltOptions{
		IDColumns:    opts.IDColumns,
		ValueColumns: opts.ValueColumns,
		VariableName: opts.VarName,
		ValueName:    opts.ValueName,
	})
	if err != nil {
		return err
	}

	format, err := meltFormat(opts)
	if err != nil {
		return err
	}
	writeOpts := tableio.WriteOptions{
		Format:       format,
		MissingValue: opts.MissingValue,
		Sheet:        config.DefaultSheet,
		Input:        inputPath,
		Overwrite:    opts.Force,
	}

	if opts.Out == "" {
		if format == tableio.FormatXLSX {
			return fmt.Errorf("xlsx output needs --out")
		}
		return tableio.Encode(cmd.OutOrStdout(), long, writeOpts)
	}

	if err := tableio.WriteFile(ctx, long, opts.Out, writeOpts); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Info("long table written",
		slog.String("path", opts.Out),
		slog.Int("rows", long.NumRows()),
		slog.Int("input_rows", wide.NumRows()))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", long.NumRows(), opts.Out)
	return nil
}

// meltFormat picks the output format from --format, else from the --out
// extension, else csv.
func meltFormat(opts *MeltOptions) (tableio.Format, error) {
	if opts.Format == "" {
		switch f := tableio.Format(strings.TrimPrefix(filepath.Ext(opts.Out), ".")); f {
		case tableio.FormatJSON, tableio.FormatXLSX:
			return f, nil
		default:
			return tableio.FormatCSV, nil
		}
	}
	switch f := tableio.Format(opts.Format); f {
	case tableio.FormatCSV, tableio.FormatJSON, tableio.FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use csv, json or xlsx)", opts.Format)
	}
}
