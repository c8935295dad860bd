package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind is the element type shared by every value of a column.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind take part in statistics.
func (k ValueKind) Numeric() bool { return k == KindInt || k == KindFloat }

// text is an unparsed cell read from a delimited or spreadsheet source.
type text string

// Cells commonly used for "no value" in delimited files.
var naValues = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
}

// ToFloat converts a numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Format renders a value for display. Missing values render as "".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case text:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

func classify(v any) ValueKind {
	switch x := v.(type) {
	case text:
		s := strings.TrimSpace(string(x))
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return KindInt
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return KindFloat
		}
		if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
			return KindBool
		}
		return KindString
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return KindInt
		}
		return KindFloat
	case int, int64:
		return KindInt
	case float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	case []string, []any:
		return KindList
	default:
		return KindString
	}
}

// inferColumn picks the narrowest kind holding every present value and
// converts the values to it.
func inferColumn(values []any) (ValueKind, []any) {
	kind, seen := KindString, false
	for _, v := range values {
		if v == nil {
			continue
		}
		k := classify(v)
		switch {
		case !seen:
			kind, seen = k, true
		case k == kind:
		case kind.Numeric() && k.Numeric():
			kind = KindFloat
		default:
			kind = KindString
		}
	}

	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		out[i] = convert(v, kind)
	}
	return kind, out
}

func convert(v any, kind ValueKind) any {
	switch kind {
	case KindInt:
		switch x := v.(type) {
		case text:
			n, _ := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
			return n
		case json.Number:
			n, _ := x.Int64()
			return n
		case int:
			return int64(x)
		}
		return v
	case KindFloat:
		switch x := v.(type) {
		case text:
			f, _ := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
			return f
		default:
			f, _ := ToFloat(x)
			return f
		}
	case KindBool:
		if x, ok := v.(text); ok {
			return strings.EqualFold(strings.TrimSpace(string(x)), "true")
		}
		return v
	case KindString:
		return Format(v)
	default:
		return v
	}
}
