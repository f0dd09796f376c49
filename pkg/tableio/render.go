package tableio

import (
	"fmt"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// Format names an on-disk table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// DefaultDateLayout renders dates as ISO 8601 calendar dates.
const DefaultDateLayout = "2006-01-02"

// WriteOptions controls how a table is encoded and where it may be written.
type WriteOptions struct {
	Format Format

	// MissingValue is written for missing cells in csv and xlsx output.
	// JSON output always uses null.
	MissingValue string

	// DateLayout renders date cells (default ISO 8601).
	DateLayout string

	// Sheet names the xlsx worksheet.
	Sheet string

	// Input is the source file the destination must never replace.
	Input string

	// Overwrite allows replacing an existing destination file.
	Overwrite bool
}

func (o WriteOptions) dateLayout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}

// renderCell returns the text form of a cell and whether it is missing.
func renderCell(c table.Cell, kind table.Kind, dateLayout string) (string, bool) {
	if c.Missing {
		return "", true
	}
	if kind == table.KindDate {
		return c.Date.Format(dateLayout), false
	}
	return c.Text, false
}

// textRows renders every row with missing cells replaced by missing. A
// present cell whose text equals a non-empty missing marker is rejected,
// since it would read back as missing.
func textRows(t *table.Table, missing, dateLayout string) ([][]string, error) {
	rows := make([][]string, t.NumRows())
	for i := range rows {
		row := make([]string, t.NumColumns())
		for j := 0; j < t.NumColumns(); j++ {
			col := t.ColumnAt(j)
			s, isMissing := renderCell(col.Cells[i], col.Kind, dateLayout)
			switch {
			case isMissing:
				s = missing
			case missing != "" && s == missing:
				return nil, fmt.Errorf("%w: row %d, column %s holds %q",
					ErrSentinelCollision, i+1, col.Name, s)
			}
			row[j] = s
		}
		rows[i] = row
	}
	return rows, nil
}
