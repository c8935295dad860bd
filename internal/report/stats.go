package report

import (
	"fmt"

	"github.com/gyeh/autoport/internal/summarize"
	"github.com/gyeh/autoport/internal/table"
)

// ColumnStats is one row of the statistics table. Numeric columns fill Mean,
// Min and Max; the others fill Unique.
type ColumnStats struct {
	Column  string
	Kind    string
	Count   int
	Missing int
	Mean    string
	Min     string
	Max     string
	Unique  string
}

func describeTable(t *table.Table) []ColumnStats {
	out := make([]ColumnStats, 0, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		c := t.ColumnAt(i)
		missing := c.Missing()
		s := ColumnStats{
			Column:  c.Name,
			Kind:    c.Kind.String(),
			Count:   c.Len() - missing,
			Missing: missing,
		}
		if d, ok := summarize.Describe(c); ok {
			s.Mean = fmt.Sprintf("%.2f", d.Mean)
			s.Min = fmt.Sprintf("%.2f", d.Min)
			s.Max = fmt.Sprintf("%.2f", d.Max)
		} else if !c.Kind.Numeric() {
			s.Unique = fmt.Sprint(unique(c))
		}
		out = append(out, s)
	}
	return out
}

func unique(c table.Column) int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v != nil {
			seen[table.Format(v)] = struct{}{}
		}
	}
	return len(seen)
}

func (s ColumnStats) binding() map[string]any {
	return map[string]any{
		"column":  s.Column,
		"kind":    s.Kind,
		"count":   s.Count,
		"missing": s.Missing,
		"mean":    s.Mean,
		"min":     s.Min,
		"max":     s.Max,
		"unique":  s.Unique,
	}
}
