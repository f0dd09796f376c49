package table

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/logging"
)

// DatePolicy selects what happens when a value fails to parse.
type DatePolicy string

const (
	// DatePolicyFail aborts on the first unparseable value.
	DatePolicyFail DatePolicy = "fail"
	// DatePolicyWarn records the value as missing and logs a warning.
	DatePolicyWarn DatePolicy = "warn"
)

// DefaultDateLayout parses month/day/two-digit-year values such as "10/5/12".
const DefaultDateLayout = "1/2/06"

// DateOptions configures FixDates.
type DateOptions struct {
	// Columns names the text columns to convert.
	Columns []string

	// ImpliedYearSuffix is appended to every value before parsing, e.g. "/12".
	// The source records carry no year, so one value applies to the whole run.
	ImpliedYearSuffix string

	// Layout is the Go time layout applied after the suffix is appended.
	Layout string

	// OnError defaults to DatePolicyFail.
	OnError DatePolicy

	Logger *slog.Logger
}

// DateIssue records a value that was nulled under DatePolicyWarn.
type DateIssue struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Line   int    `json:"line"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// FixDates converts the designated text columns into date columns in place.
// Missing cells are left missing. Under DatePolicyFail the first failure is
// returned as a *DateParseError and the table is left unchanged.
func FixDates(t *Table, opts DateOptions) ([]DateIssue, error) {
	layout := opts.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	policy := opts.OnError
	if policy == "" {
		policy = DatePolicyFail
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var issues []DateIssue
	converted := make(map[string][]Cell, len(opts.Columns))

	for _, name := range opts.Columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, unknownColumn(name)
		}
		if col.Kind == KindDate {
			return nil, fmt.Errorf("column %q is already a date column", name)
		}

		cells := make([]Cell, len(col.Cells))
		for i, c := range col.Cells {
			if c.Missing {
				cells[i] = c
				continue
			}

			value := c.Text + opts.ImpliedYearSuffix
			d, err := time.Parse(layout, value)
			if err == nil {
				cells[i] = Date(d)
				continue
			}

			if policy == DatePolicyFail {
				return nil, &DateParseError{Column: name, Row: i, Value: value, Err: err}
			}

			logger.Warn("date value nulled",
				slog.String("column", name),
				slog.Int("line", i+1),
				slog.String("value", value),
				slog.String("layout", layout))
			issues = append(issues, DateIssue{
				Column: name,
				Row:    i,
				Line:   i + 1,
				Value:  value,
				Reason: err.Error(),
			})
			cells[i] = Missing()
		}
		converted[name] = cells
	}

	for name, cells := range converted {
		col, _ := t.Column(name)
		col.Cells = cells
		col.Kind = KindDate
	}

	return issues, nil
}
