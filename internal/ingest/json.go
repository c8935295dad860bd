package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gyeh/autoport/internal/table"
)

var errNotTabular = errors.New("JSON value is not directly tabular")

// LoadJSON reads a JSON file. Record arrays of flat objects and column
// oriented objects load directly; any other shape is flattened, with nested
// keys joined by ".".
//
// Options: parse_dates.
func LoadJSON(ctx context.Context, path string, opts Options) (*table.Table, error) {
	if err := opts.check("json", "parse_dates"); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()

	doc, err := decodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	b, err := tabular(doc)
	if err != nil {
		b = table.NewBuilder()
		switch v := doc.(type) {
		case []any:
			for _, item := range v {
				b.AddRecord(flattenRecord(item))
			}
		default:
			b.AddRecord(flattenRecord(v))
		}
	}
	b.ParseDates(opts.list("parse_dates")...)
	return b.Build()
}

// tabular accepts an array of flat objects, an object of equal-length column
// arrays, or an object of column objects keyed by row label.
func tabular(doc any) (*table.Builder, error) {
	switch v := doc.(type) {
	case []any:
		b := table.NewBuilder()
		for _, item := range v {
			obj, ok := item.(object)
			if !ok || !flat(obj) {
				return nil, errNotTabular
			}
			b.AddRecord(plainFields(obj))
		}
		return b, nil
	case object:
		if len(v) == 0 {
			return nil, errNotTabular
		}
		if b, ok := columnArrays(v); ok {
			return b, nil
		}
		if b, ok := columnObjects(v); ok {
			return b, nil
		}
	}
	return nil, errNotTabular
}

func flat(obj object) bool {
	for _, f := range obj {
		if nested, ok := f.Value.(object); ok && len(nested) > 0 {
			return false
		}
	}
	return true
}

func plainFields(obj object) []table.Field {
	out := make([]table.Field, len(obj))
	for i, f := range obj {
		out[i] = table.Field{Name: f.Name, Value: plain(f.Value)}
	}
	return out
}

func columnArrays(obj object) (*table.Builder, bool) {
	n := -1
	for _, f := range obj {
		arr, ok := f.Value.([]any)
		if !ok || (n >= 0 && len(arr) != n) {
			return nil, false
		}
		n = len(arr)
	}
	names := make([]string, len(obj))
	for i, f := range obj {
		names[i] = f.Name
	}
	b := table.NewBuilder(names...)
	for i := 0; i < n; i++ {
		row := make([]table.Field, len(obj))
		for j, f := range obj {
			row[j] = table.Field{Name: f.Name, Value: plain(f.Value.([]any)[i])}
		}
		b.AddRecord(row)
	}
	return b, true
}

func columnObjects(obj object) (*table.Builder, bool) {
	var labels []string
	seen := map[string]bool{}
	for _, f := range obj {
		col, ok := f.Value.(object)
		if !ok {
			return nil, false
		}
		for _, cell := range col {
			if _, nested := cell.Value.(object); nested {
				return nil, false
			}
			if !seen[cell.Name] {
				seen[cell.Name] = true
				labels = append(labels, cell.Name)
			}
		}
	}
	names := make([]string, len(obj))
	for i, f := range obj {
		names[i] = f.Name
	}
	b := table.NewBuilder(names...)
	for _, label := range labels {
		row := make([]table.Field, 0, len(obj))
		for _, f := range obj {
			val, _ := f.Value.(object).get(label)
			row = append(row, table.Field{Name: f.Name, Value: plain(val)})
		}
		b.AddRecord(row)
	}
	return b, true
}
