package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// quietReport is the compact form for scripts: where the table went, the
// counts, and every nulled date value. DateIssues is always an array.
type quietReport struct {
	RunID      string            `json:"run_id"`
	Output     string            `json:"output"`
	Summary    Summary           `json:"summary"`
	DateIssues []table.DateIssue `json:"date_issues"`
}

// Format renders the report as JSON. Padded line details are included only
// in verbose mode, matching the text report.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		issues := report.DateIssues
		if issues == nil {
			issues = []table.DateIssue{}
		}
		return encoder.Encode(quietReport{
			RunID:      report.Metadata.RunID,
			Output:     report.Metadata.Output,
			Summary:    report.Summary,
			DateIssues: issues,
		})
	}

	if !f.opts.Verbose && len(report.PaddedLines) > 0 {
		trimmed := *report
		trimmed.PaddedLines = nil
		return encoder.Encode(&trimmed)
	}
	return encoder.Encode(report)
}
