package tableio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// DefaultSheet is used when no worksheet name is given.
const DefaultSheet = "Sheet1"

// WriteXLSX writes the table to a single worksheet. Dates are written as
// rendered text so the file reads back the same in every spreadsheet.
func WriteXLSX(w io.Writer, t *table.Table, opts WriteOptions) error {
	rows, err := textRows(t, opts.MissingValue, opts.dateLayout())
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet %q: %w", sheet, err)
	}

	if err := setRow(f, sheet, 1, t.Columns()); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for j, v := range values {
		cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// ReadXLSX reads a worksheet whose first row is the header. Rows shorter than
// the header, which excelize returns when trailing cells are empty, are
// extended with empty strings.
func ReadXLSX(path string, opts ReadOptions) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	width := len(rows[0])
	for i, row := range rows[1:] {
		if len(row) > width {
			return nil, &table.ShapeError{Want: width, Got: len(row), Msg: fmt.Sprintf("sheet %q row %d", sheet, i+2)}
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows[i+1] = row
	}
	return fromRows(rows, opts)
}
