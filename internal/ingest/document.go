package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gyeh/autoport/internal/table"
)

// object is a decoded JSON object with its keys in document order.
type object []table.Field

func (o object) get(key string) (any, bool) {
	for _, f := range o {
		if f.Name == key {
			return f.Value, true
		}
	}
	return nil, false
}

// decodeDocument reads exactly one JSON value. Objects decode to object,
// numbers to json.Number.
func decodeDocument(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = obj.set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected JSON delimiter %q", delim)
}

// set keeps the first position of a repeated key and the last value.
func (o object) set(key string, val any) object {
	for i := range o {
		if o[i].Name == key {
			o[i].Value = val
			return o
		}
	}
	return append(o, table.Field{Name: key, Value: val})
}

// flattenRecord turns one JSON value into a row. Nested object keys are joined
// with "."; a non-object value becomes a single "value" field.
func flattenRecord(v any) []table.Field {
	obj, ok := v.(object)
	if !ok {
		return []table.Field{{Name: "value", Value: plain(v)}}
	}
	var out []table.Field
	flattenInto(&out, "", obj)
	return out
}

func flattenInto(out *[]table.Field, prefix string, obj object) {
	for _, f := range obj {
		name := f.Name
		if prefix != "" {
			name = prefix + "." + f.Name
		}
		if nested, ok := f.Value.(object); ok {
			if len(nested) > 0 {
				flattenInto(out, name, nested)
				continue
			}
			*out = append(*out, table.Field{Name: name})
			continue
		}
		*out = append(*out, table.Field{Name: name, Value: plain(f.Value)})
	}
}

// plain converts nested objects to maps so they can live inside list values.
func plain(v any) any {
	switch x := v.(type) {
	case object:
		m := make(map[string]any, len(x))
		for _, f := range x {
			m[f.Name] = plain(f.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// flattenRows builds a table with one flattened row per element.
func flattenRows(items []any) (*table.Table, error) {
	b := table.NewBuilder()
	for _, item := range items {
		b.AddRecord(flattenRecord(item))
	}
	return b.Build()
}

// lookupPath follows a dot separated path through nested objects.
func lookupPath(v any, path string) (any, error) {
	cur := v
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(object)
		if !ok {
			return nil, fmt.Errorf("extract_path %q: %q is not inside an object", path, key)
		}
		next, ok := obj.get(key)
		if !ok {
			return nil, fmt.Errorf("extract_path %q: field %q not found", path, key)
		}
		cur = next
	}
	return cur, nil
}
