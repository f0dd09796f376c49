package table

import (
	"github.com/ccollicutt/fieldnotes/pkg/record"
)

// Build assembles field sequences into a rectangular table.
//
// The table width is the length of the longest sequence and must equal
// len(columns). Shorter sequences are right-padded with missing cells; a
// short record is assumed to lack trailing fields only. The classified
// records are returned alongside the table so callers can report padding.
func Build(records []record.FieldSequence, columns []string) (*Table, []record.Record, error) {
	t, err := New(columns)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return t, nil, nil
	}

	maxLen := 0
	for _, fs := range records {
		if len(fs) > maxLen {
			maxLen = len(fs)
		}
	}
	if maxLen != len(columns) {
		return nil, nil, &ShapeError{Want: len(columns), Got: maxLen}
	}

	classified := make([]record.Record, len(records))
	for i, fs := range records {
		rec := record.Classify(fs, maxLen)
		classified[i] = rec

		fields, padded := rec.Padded()
		cells := make([]Cell, len(fields))
		for j, f := range fields {
			if padded[j] {
				cells[j] = Missing()
			} else {
				cells[j] = Text(f)
			}
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, nil, err
		}
	}

	return t, classified, nil
}
