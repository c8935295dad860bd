// Package parquetio writes table snapshots as Parquet files and reads them
// back for inspection.
package parquetio

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/autoport/internal/table"
)

// SchemaFor builds a flat schema with one optional leaf per column. Lists are
// stored as their display text.
func SchemaFor(name string, t *table.Table) *parquet.Schema {
	group := parquet.Group{}
	for i := 0; i < t.NumCols(); i++ {
		c := t.ColumnAt(i)
		group[c.Name] = parquet.Optional(leafFor(c.Kind))
	}
	return parquet.NewSchema(name, group)
}

func leafFor(kind table.ValueKind) parquet.Node {
	switch kind {
	case table.KindInt:
		return parquet.Int(64)
	case table.KindFloat:
		return parquet.Leaf(parquet.DoubleType)
	case table.KindBool:
		return parquet.Leaf(parquet.BooleanType)
	case table.KindTime:
		return parquet.Timestamp(parquet.Millisecond)
	default:
		return parquet.String()
	}
}

// WriteTable writes t to path, replacing any existing file.
func WriteTable(path string, t *table.Table) error {
	schema := SchemaFor("autoport_snapshot", t)

	// Group fields are laid out in name order; that order is the leaf index.
	names := t.Columns()
	sort.Strings(names)
	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewWriter(f, schema)
	rows := make([]parquet.Row, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		row := make(parquet.Row, len(cols))
		for i, c := range cols {
			row[i] = valueOf(c.Kind, c.Values[r]).Level(0, definition(c.Values[r]), i)
		}
		rows = append(rows, row)
	}
	if _, err := w.WriteRows(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

func definition(v any) int {
	if v == nil {
		return 0
	}
	return 1
}

func valueOf(kind table.ValueKind, v any) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}
	switch kind {
	case table.KindInt:
		if n, ok := v.(int64); ok {
			return parquet.Int64Value(n)
		}
	case table.KindFloat:
		if f, ok := table.ToFloat(v); ok {
			return parquet.DoubleValue(f)
		}
	case table.KindBool:
		if b, ok := v.(bool); ok {
			return parquet.BooleanValue(b)
		}
	case table.KindTime:
		if ts, ok := v.(time.Time); ok {
			return parquet.Int64Value(ts.UnixMilli())
		}
	}
	return parquet.ByteArrayValue([]byte(table.Format(v)))
}
