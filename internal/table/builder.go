package table

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gyeh/autoport/internal/normalize"
)

// Field is one named value of a record.
type Field struct {
	Name  string
	Value any
}

// Builder accumulates rows and infers column kinds on Build. Columns appear in
// order of first appearance.
type Builder struct {
	names []string
	index map[string]int
	rows  [][]any
	dates []string
}

// NewBuilder starts a table with the given header. Repeated header names are
// made unique by suffixing ".1", ".2", ...
func NewBuilder(header ...string) *Builder {
	b := &Builder{index: make(map[string]int)}
	for _, name := range header {
		b.addColumn(b.uniqueName(name))
	}
	return b
}

func (b *Builder) uniqueName(name string) string {
	if _, dup := b.index[name]; !dup {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "." + strconv.Itoa(i)
		if _, dup := b.index[candidate]; !dup {
			return candidate
		}
	}
}

func (b *Builder) addColumn(name string) int {
	i := len(b.names)
	b.names = append(b.names, name)
	b.index[name] = i
	return i
}

// AddText appends a row of raw text cells aligned with the header. Cells
// beyond the header are dropped; NA markers become missing values.
func (b *Builder) AddText(cells []string) {
	row := make([]any, len(b.names))
	for i, c := range cells {
		if i >= len(row) {
			break
		}
		if naValues[c] {
			continue
		}
		row[i] = text(c)
	}
	b.rows = append(b.rows, row)
}

// AddRecord appends a row of typed values, adding columns for unseen names.
func (b *Builder) AddRecord(fields []Field) {
	row := make([]any, len(b.names), len(b.names)+len(fields))
	for _, f := range fields {
		i, ok := b.index[f.Name]
		if !ok {
			i = b.addColumn(f.Name)
			row = append(row, nil)
		}
		row[i] = f.Value
	}
	b.rows = append(b.rows, row)
}

// ParseDates marks columns to be converted to time values on Build.
func (b *Builder) ParseDates(cols ...string) {
	b.dates = append(b.dates, cols...)
}

// Build infers each column's kind and returns the table.
func (b *Builder) Build() (*Table, error) {
	cols := make([]Column, len(b.names))
	for j, name := range b.names {
		values := make([]any, len(b.rows))
		for i, row := range b.rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		kind, converted := inferColumn(values)
		cols[j] = Column{Name: name, Kind: kind, Values: converted}
	}

	for _, name := range b.dates {
		j, ok := b.index[name]
		if !ok {
			return nil, fmt.Errorf("parse_dates: unknown column %q", name)
		}
		if parsed, ok := parseTimes(cols[j].Values); ok {
			cols[j].Kind = KindTime
			cols[j].Values = parsed
		}
	}
	return New(cols...)
}

// parseTimes converts every present value; it fails if any value does not
// parse so the column keeps its original kind.
func parseTimes(values []any) ([]any, bool) {
	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok {
			out[i] = t
			continue
		}
		t := normalize.ParseDate(Format(v))
		if t == nil {
			return nil, false
		}
		out[i] = *t
	}
	return out, true
}
