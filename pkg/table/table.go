// Package table provides the rectangular table produced by a cleaning run,
// together with the builder that pads ragged records, the date fixer and the
// wide-to-long reshape.
package table

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the value type held by a column.
type Kind int

const (
	// KindText columns hold strings.
	KindText Kind = iota
	// KindDate columns hold calendar dates.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Cell is a single table value. A missing cell is distinct from every text
// value, including the empty string and "NA".
type Cell struct {
	Text    string
	Date    time.Time
	Missing bool
}

// Text returns a text cell.
func Text(s string) Cell {
	return Cell{Text: s}
}

// Date returns a date cell.
func Date(d time.Time) Cell {
	return Cell{Date: d}
}

// Missing returns a missing cell.
func Missing() Cell {
	return Cell{Missing: true}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Table is a set of equal-length columns in a fixed order.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates an empty table with the given column names.
// Names must be non-empty and unique.
func New(names []string) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for _, name := range names {
		if name == "" {
			return nil, errors.New("column name must not be empty")
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, &Column{Name: name, Kind: KindText})
	}
	return t, nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column {
	return t.columns[i]
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// AppendRow appends one cell per column.
func (t *Table) AppendRow(cells []Cell) error {
	if len(cells) != len(t.columns) {
		return &ShapeError{Want: len(t.columns), Got: len(cells), Msg: fmt.Sprintf("row %d", t.rows)}
	}
	for i, c := range cells {
		t.columns[i].Cells = append(t.columns[i].Cells, c)
	}
	t.rows++
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Cells[i]
	}
	return row
}

// Cell returns the cell at row i in the named column.
func (t *Table) Cell(i int, column string) (Cell, bool) {
	c, ok := t.Column(column)
	if !ok || i < 0 || i >= t.rows {
		return Cell{}, false
	}
	return c.Cells[i], true
}

// Equal reports whether o has the same columns, kinds and cells as t.
func (t *Table) Equal(o *Table) bool {
	if t.NumColumns() != o.NumColumns() || t.rows != o.rows {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Cells {
			if !c.Cells[r].Equal(oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}

// Equal compares two cells; dates compare by instant.
func (c Cell) Equal(o Cell) bool {
	if c.Missing || o.Missing {
		return c.Missing == o.Missing
	}
	return c.Text == o.Text && c.Date.Equal(o.Date)
}
