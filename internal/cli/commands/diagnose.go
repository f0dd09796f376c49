package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/detector"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
	"github.com/ccollicutt/fieldnotes/pkg/record"
	"github.com/ccollicutt/fieldnotes/pkg/table"
	"github.com/ccollicutt/fieldnotes/pkg/tableio"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	Lines   int
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and validity
- Input file existence and readability
- Output path safety
- A trial parse of the first lines of the input
- Date parsing of those lines with the configured suffix and layout

Example:
  fieldnotes diagnose fieldnotes.yaml
  fieldnotes diagnose -v --lines 500 fieldnotes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 50, "Number of input lines to trial-parse")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse and validate config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check input and output paths
	input := checkInput(cfg)
	results = append(results, input)
	results = append(results, checkOutput(ctx, cfg, opts))

	// 4. Trial parse and date check
	if input.Status != "error" {
		results = append(results, checkTrialParse(ctx, cfg, opts)...)
	}

	if len(cfg.Webhooks) > 0 {
		results = append(results, checkWebhooks(cfg))
	}

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'fieldnotes detect <raw-file> --write-config fieldnotes.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'fieldnotes detect <raw-file> --write-config fieldnotes.yaml' to generate a starter config",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		if strings.Contains(err.Error(), "validating") {
			result.Suggests = append(result.Suggests,
				"Run 'fieldnotes validate "+path+"' after fixing to confirm")
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed and validated"
	result.Details = []string{
		fmt.Sprintf("Columns: %d (%s)", len(cfg.Record.Columns), strings.Join(cfg.Record.Columns, ", ")),
		fmt.Sprintf("Marker: %q, date width %d", cfg.Record.Marker, cfg.Record.DateWidth),
		fmt.Sprintf("Dates: %s with suffix %q, layout %q, on_error %s",
			strings.Join(cfg.Dates.Columns, ", "), cfg.Dates.ImpliedYearSuffix, cfg.Dates.Layout, cfg.Dates.OnError),
	}
	return cfg, result
}

func checkInput(cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Input: %s", cfg.Input),
	}

	info, err := os.Stat(cfg.Input)
	switch {
	case os.IsNotExist(err):
		result.Status = "error"
		result.Message = "File does not exist"
		result.Suggests = []string{
			"Check if the input path is correct (relative paths resolve from the working directory)",
		}
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
	case info.IsDir():
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
	case info.Size() == 0:
		result.Status = "warning"
		result.Message = "File is empty (0 bytes); cleaning will produce an empty table"
	default:
		f, err := os.Open(cfg.Input) // #nosec G304 -- user-provided input path from config
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("File is not readable: %v", err)
			return result
		}
		_ = f.Close()
		result.Status = "ok"
		result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
	}
	return result
}

func checkOutput(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Output (%s)", cfg.Output.Format),
	}

	if cfg.Output.Format == config.OutputFormatDB {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Table %q", cfg.Output.Table)
		if !opts.Verbose {
			return result
		}
		db, err := tableio.OpenDB(ctx, cfg.Output.DBURL, logging.FromContext(ctx))
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot connect: %v", err)
			result.Suggests = []string{"db_url must start with sqlite:/// or postgres://"}
			return result
		}
		_ = tableio.CloseDB(db)
		result.Details = []string{"Database reachable"}
		return result
	}

	path := cfg.Output.Path
	if tableio.SamePath(path, cfg.Input) {
		result.Status = "error"
		result.Message = "Output path refers to the input file"
		result.Suggests = []string{"Choose a different output.path; the raw file is never modified"}
		return result
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("Output directory does not exist: %s", dir)
		result.Suggests = []string{"Create the directory before running clean"}
		return result
	}

	if _, err := os.Stat(path); err == nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%s already exists", path)
		result.Suggests = []string{"Run clean with --force to replace it"}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Will write %s", path)
	return result
}

func checkTrialParse(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	lines, err := tableio.ReadLines(ctx, cfg.Input)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Trial Parse",
			Status:  "error",
			Message: fmt.Sprintf("Cannot read input: %v", err),
		})
	}
	if opts.Lines > 0 && len(lines) > opts.Lines {
		lines = lines[:opts.Lines]
	}

	parser := record.NewParser(
		record.WithMarker(cfg.Record.Marker),
		record.WithDateWidth(cfg.Record.DateWidth),
	)

	parseResult := DiagnosticResult{
		Check: fmt.Sprintf("Trial Parse (first %d lines)", len(lines)),
	}

	var parsed []record.FieldSequence
	var failures []string
	for i, line := range lines {
		fields, err := parser.ParseLine(i+1, line)
		if err != nil {
			failures = append(failures, truncate(err.Error(), 100))
			continue
		}
		parsed = append(parsed, fields)
	}

	if len(failures) > 0 {
		parseResult.Status = "error"
		parseResult.Message = fmt.Sprintf("%d/%d lines fail to parse; clean will abort", len(failures), len(lines))
		parseResult.Details = failures
		parseResult.Suggests = []string{
			fmt.Sprintf("Every line needs exactly one date-range marker %q", cfg.Record.Marker),
			"Use 'fieldnotes detect " + cfg.Input + "' to profile the file",
		}
	} else {
		parseResult.Status = "ok"
		parseResult.Message = fmt.Sprintf("All %d lines parse", len(lines))
	}
	results = append(results, parseResult)

	if len(parsed) == 0 {
		return results
	}

	tbl, records, err := table.Build(parsed, cfg.Record.Columns)
	shapeResult := DiagnosticResult{Check: "Column Count"}
	if err != nil {
		shapeResult.Status = "error"
		shapeResult.Message = err.Error()
		var se *table.ShapeError
		if errors.As(err, &se) {
			shapeResult.Suggests = []string{
				fmt.Sprintf("The widest sampled line has %d fields; record.columns names %d", se.Got, se.Want),
			}
		}
		return append(results, shapeResult)
	}
	padded := 0
	for _, r := range records {
		if !r.Complete() {
			padded++
		}
	}
	shapeResult.Status = "ok"
	shapeResult.Message = fmt.Sprintf("%d columns, %d sampled line(s) padded", len(cfg.Record.Columns), padded)
	results = append(results, shapeResult)

	dateResult := DiagnosticResult{Check: "Date Parsing"}
	issues, err := table.FixDates(tbl, table.DateOptions{
		Columns:           cfg.Dates.Columns,
		ImpliedYearSuffix: cfg.Dates.ImpliedYearSuffix,
		Layout:            cfg.Dates.Layout,
		OnError:           table.DatePolicyWarn,
	})
	switch {
	case err != nil:
		dateResult.Status = "error"
		dateResult.Message = err.Error()
	case len(issues) > 0:
		dateResult.Status = "error"
		if cfg.Dates.Policy() == table.DatePolicyWarn {
			dateResult.Status = "warning"
		}
		dateResult.Message = fmt.Sprintf("%d sampled date value(s) do not match layout %q", len(issues), cfg.Dates.Layout)
		for _, issue := range issues {
			dateResult.Details = append(dateResult.Details, fmt.Sprintf("line %d, %s: %q", issue.Line, issue.Column, issue.Value))
		}
		d := detector.New(
			detector.WithMarker(cfg.Record.Marker),
			detector.WithDateWidth(cfg.Record.DateWidth),
		)
		if best := d.DetectFromLines(lines).BestMatch(); best != nil && cfg.Dates.ImpliedYearSuffix == config.DefaultImpliedYearSuffix {
			dateResult.Suggests = append(dateResult.Suggests,
				fmt.Sprintf("Detected date format: %s (layout %q)", best.Format.Name, best.Layout))
		}
	default:
		dateResult.Status = "ok"
		dateResult.Message = fmt.Sprintf("All sampled dates parse with layout %q", cfg.Dates.Layout)
		if opts.Verbose && len(cfg.Dates.Columns) > 0 {
			if c, ok := tbl.Cell(0, cfg.Dates.Columns[0]); ok && !c.Missing {
				dateResult.Details = []string{fmt.Sprintf("First %s: %s", cfg.Dates.Columns[0], c.Date.Format("2006-01-02"))}
			}
		}
	}
	results = append(results, dateResult)

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== fieldnotes Configuration Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running clean.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check:   "Webhooks",
		Status:  "ok",
		Message: fmt.Sprintf("%d webhook(s) configured", len(cfg.Webhooks)),
	}
	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		result.Details = append(result.Details, fmt.Sprintf("%s: %s (trigger %s, timeout %s)", name, wh.URL, wh.Trigger, wh.Timeout))
		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = "warning"
			result.Suggests = append(result.Suggests, fmt.Sprintf("Webhook %s has trigger never and will not fire", name))
		}
	}
	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
