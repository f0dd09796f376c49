package table

import (
	"errors"
	"fmt"
)

// MeltOptions configures Melt.
type MeltOptions struct {
	// IDColumns are carried unchanged onto every output row.
	IDColumns []string

	// ValueColumns are pivoted into (variable, value) pairs. Empty means every
	// column that is not an id column.
	ValueColumns []string

	// VariableName names the output column holding the source column name.
	VariableName string

	// ValueName names the output column holding the cell.
	ValueName string
}

// Melt reshapes a wide table into long form: one output row per input row
// and value column, in row-major order.
func Melt(t *Table, opts MeltOptions) (*Table, error) {
	varName := opts.VariableName
	if varName == "" {
		varName = "variable"
	}
	valName := opts.ValueName
	if valName == "" {
		valName = "value"
	}
	if len(opts.IDColumns) == 0 {
		return nil, errors.New("melt: at least one id column is required")
	}

	ids := make([]*Column, len(opts.IDColumns))
	isID := make(map[string]bool, len(opts.IDColumns))
	for i, name := range opts.IDColumns {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("melt: id: %w", unknownColumn(name))
		}
		ids[i] = col
		isID[name] = true
	}

	valueNames := opts.ValueColumns
	if len(valueNames) == 0 {
		for _, name := range t.Columns() {
			if !isID[name] {
				valueNames = append(valueNames, name)
			}
		}
	}
	values := make([]*Column, len(valueNames))
	for i, name := range valueNames {
		if isID[name] {
			return nil, fmt.Errorf("melt: column %q is both id and value", name)
		}
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("melt: value: %w", unknownColumn(name))
		}
		values[i] = col
	}

	out, err := New(append(append([]string{}, opts.IDColumns...), varName, valName))
	if err != nil {
		return nil, fmt.Errorf("melt: %w", err)
	}
	for i, id := range ids {
		out.columns[i].Kind = id.Kind
	}
	if len(values) > 0 {
		kind := values[0].Kind
		for _, v := range values[1:] {
			if v.Kind != kind {
				return nil, fmt.Errorf("melt: value columns mix %s and %s values", kind, v.Kind)
			}
		}
		out.columns[len(ids)+1].Kind = kind
	}

	for r := 0; r < t.NumRows(); r++ {
		for _, v := range values {
			row := make([]Cell, 0, len(ids)+2)
			for _, id := range ids {
				row = append(row, id.Cells[r])
			}
			row = append(row, Text(v.Name), v.Cells[r])
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
