// Package table holds the in-memory tabular container produced by loaders and
// read by the summarizer and the report renderer.
package table

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
)

// Column is a named, homogeneously typed sequence of values. A nil entry is a
// missing value. Values must not be modified by callers.
type Column struct {
	Name   string
	Kind   ValueKind
	Values []any
}

// Len returns the number of values including missing ones.
func (c Column) Len() int { return len(c.Values) }

// Missing counts nil values.
func (c Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Floats returns the present numeric values in row order.
func (c Column) Floats() []float64 {
	if !c.Kind.Numeric() {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// Table is an ordered collection of equal-length columns with unique names.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New assembles a table from columns, rejecting duplicate names and ragged
// lengths.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d values, want %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool { return t == nil || t.rows == 0 || len(t.cols) == 0 }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// NumericColumns returns int and float columns in order.
func (t *Table) NumericColumns() []Column {
	var out []Column
	for _, c := range t.cols {
		if c.Kind.Numeric() {
			out = append(out, c)
		}
	}
	return out
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Values[i]
	}
	return row
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n >= t.rows {
		return t
	}
	if n < 0 {
		n = 0
	}
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: c.Values[:n:n]}
	}
	return &Table{cols: cols, index: t.index, rows: n}
}
