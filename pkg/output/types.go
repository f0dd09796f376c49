// Package output renders the report printed after a cleaning run.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/fieldnotes/pkg/pipeline"
	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// Report is the complete run output.
type Report struct {
	Summary Summary `json:"summary"`

	// PaddedLines lists input lines that lacked trailing fields.
	PaddedLines []PaddedLine `json:"padded_lines,omitempty"`

	// DateIssues lists values nulled under the warn date policy.
	DateIssues []table.DateIssue `json:"date_issues,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	LinesRead    int `json:"lines_read"`
	Rows         int `json:"rows"`
	Columns      int `json:"columns"`
	PaddedRows   int `json:"padded_rows"`
	MissingCells int `json:"missing_cells"`
	DateIssues   int `json:"date_issues"`
}

// PaddedLine is one input line that was right-padded with missing cells.
type PaddedLine struct {
	Line    int `json:"line"`
	Missing int `json:"missing"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies this run in logs and reports.
	RunID string `json:"run_id"`

	ConfigFile string `json:"config_file,omitempty"`
	Input      string `json:"input"`

	// Output is the artifact path, or the table name for db output.
	Output string `json:"output"`
	Format string `json:"format"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewReport creates a Report from a pipeline result. meta.RunID is filled in
// when empty.
func NewReport(result *pipeline.Result, meta Metadata) *Report {
	if meta.RunID == "" {
		meta.RunID = NewRunID()
	}
	if meta.Duration == 0 {
		meta.Duration = result.Stats.Duration
	}

	report := &Report{
		Summary: Summary{
			LinesRead:    result.Stats.LinesRead,
			Rows:         result.Stats.Rows,
			Columns:      result.Table.NumColumns(),
			PaddedRows:   result.Stats.PaddedRows,
			MissingCells: result.Stats.MissingCells,
			DateIssues:   len(result.DateIssues),
		},
		DateIssues: result.DateIssues,
		Metadata:   meta,
	}

	for i, rec := range result.Records {
		if !rec.Complete() {
			report.PaddedLines = append(report.PaddedLines, PaddedLine{Line: i + 1, Missing: rec.Missing})
		}
	}

	return report
}

// HasIssues returns true if any date value was nulled.
func (r *Report) HasIssues() bool {
	return r.Summary.DateIssues > 0
}
