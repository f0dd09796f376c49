package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// ReadOptions controls how a written table is read back.
type ReadOptions struct {
	// MissingValue marks missing cells. Empty means no cell is read as missing.
	MissingValue string

	// DateColumns are parsed with DateLayout into date cells.
	DateColumns []string

	// DateLayout defaults to DefaultDateLayout.
	DateLayout string

	// Sheet selects the xlsx worksheet; empty means the first one.
	Sheet string
}

// WriteCSV writes a header row and one record per table row.
func WriteCSV(w io.Writer, t *table.Table, opts WriteOptions) error {
	rows, err := textRows(t, opts.MissingValue, opts.dateLayout())
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

// ReadCSV reads a table written by WriteCSV. Every row must have as many
// fields as the header.
func ReadCSV(r io.Reader, opts ReadOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return fromRows(rows, opts)
}

// fromRows builds a table from a header row followed by data rows.
func fromRows(rows [][]string, opts ReadOptions) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("input has no header row")
	}
	t, err := table.New(rows[0])
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	layout := opts.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	for _, name := range opts.DateColumns {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("date column %q: %w", name, table.ErrUnknownColumn)
		}
		col.Kind = table.KindDate
	}
	isDate := make([]bool, t.NumColumns())
	for i := range isDate {
		isDate[i] = t.ColumnAt(i).Kind == table.KindDate
	}

	for n, row := range rows[1:] {
		cells := make([]table.Cell, len(row))
		for i, v := range row {
			switch {
			case opts.MissingValue != "" && v == opts.MissingValue:
				cells[i] = table.Missing()
			case i < len(isDate) && isDate[i]:
				d, err := time.Parse(layout, v)
				if err != nil {
					return nil, &table.DateParseError{Column: t.ColumnAt(i).Name, Row: n, Value: v, Err: err}
				}
				cells[i] = table.Date(d)
			default:
				cells[i] = table.Text(v)
			}
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}
