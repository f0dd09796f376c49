package output

import (
	"context"
	"fmt"
	"io"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "fieldnotes: %d rows written to %s, %d padded, %d date issue(s)\n",
		report.Summary.Rows,
		report.Metadata.Output,
		report.Summary.PaddedRows,
		report.Summary.DateIssues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== fieldnotes Cleaning Report ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Input:  %s\n", report.Metadata.Input)
	fmt.Fprintf(w, "Output: %s (%s)\n", report.Metadata.Output, report.Metadata.Format)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "[PADDING] %d row(s) missing trailing fields\n", report.Summary.PaddedRows)
	if f.opts.Verbose {
		for _, p := range report.PaddedLines {
			fmt.Fprintf(w, "  - line %d: %d missing field(s)\n", p.Line, p.Missing)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "[DATES] ")
	if len(report.DateIssues) == 0 {
		fmt.Fprintln(w, "No issues detected")
	} else {
		fmt.Fprintf(w, "%d value(s) nulled\n", len(report.DateIssues))
		for _, issue := range report.DateIssues {
			fmt.Fprintf(w, "  - line %d, %s: %q (%s)\n", issue.Line, issue.Column, issue.Value, issue.Reason)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d lines read, %d rows x %d columns, %d missing cell(s)\n",
		report.Summary.LinesRead,
		report.Summary.Rows,
		report.Summary.Columns,
		report.Summary.MissingCells)
	if err != nil {
		return err
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run ID: %s\n", report.Metadata.RunID)
		if report.Metadata.ConfigFile != "" {
			fmt.Fprintf(w, "Config: %s\n", report.Metadata.ConfigFile)
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}
