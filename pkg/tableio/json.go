package tableio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// WriteJSON writes the table as an array of objects whose keys follow the
// column order. Missing cells are null.
func WriteJSON(w io.Writer, t *table.Table, opts WriteOptions) error {
	names := t.Columns()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encoding column name %q: %w", name, err)
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteString("[")
	for r := 0; r < t.NumRows(); r++ {
		if r > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for i := range names {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.Write(keys[i])
			buf.WriteString(": ")

			col := t.ColumnAt(i)
			s, missing := renderCell(col.Cells[r], col.Kind, opts.dateLayout())
			if missing {
				buf.WriteString("null")
				continue
			}
			v, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("encoding row %d: %w", r, err)
			}
			buf.Write(v)
		}
		buf.WriteString("}")
	}
	if t.NumRows() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	_, err := w.Write(buf.Bytes())
	return err
}
