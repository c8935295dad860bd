// Package summarize produces the short rule-based digest shown in reports and
// notifications. Output depends only on the table contents.
package summarize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gyeh/autoport/internal/normalize"
	"github.com/gyeh/autoport/internal/table"
)

// DefaultMaxItems is the number of numeric columns given a stats line.
const DefaultMaxItems = 3

// Stats are descriptive statistics over the present values of one column.
type Stats struct {
	Count int
	Sum   float64
	Mean  float64
	Min   float64
	Max   float64
}

// Describe computes Stats for a numeric column. ok is false when the column
// has no present numeric values.
func Describe(c table.Column) (s Stats, ok bool) {
	vals := c.Floats()
	if len(vals) == 0 {
		return Stats{}, false
	}
	s = Stats{Count: len(vals), Min: vals[0], Max: vals[0]}
	for _, v := range vals {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(len(vals))
	return s, true
}

// Summarize returns the digest lines of t joined by newlines.
func Summarize(t *table.Table, maxItems int) string {
	if t == nil {
		return "Rows: 0, Columns: 0."
	}
	lines := []string{fmt.Sprintf("Rows: %d, Columns: %d.", t.NumRows(), t.NumCols())}

	if line := missingLine(t); line != "" {
		lines = append(lines, line)
	}

	nums := t.NumericColumns()
	if len(nums) == 0 {
		return strings.Join(lines, "\n")
	}

	if top, mean, ok := topByMean(nums); ok {
		lines = append(lines, fmt.Sprintf("Top numeric column by mean: %s (mean=%.2f)", top, mean))
	}
	for i, c := range nums {
		if i >= maxItems {
			break
		}
		s, ok := Describe(c)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: sum=%.2f, mean=%.2f, min=%.2f, max=%.2f", c.Name, s.Sum, s.Mean, s.Min, s.Max))
	}

	if line := trendLine(t, nums[0]); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func missingLine(t *table.Table) string {
	type count struct {
		name string
		n    int
	}
	var counts []count
	for i := 0; i < t.NumCols(); i++ {
		c := t.ColumnAt(i)
		if n := c.Missing(); n > 0 {
			counts = append(counts, count{c.Name, n})
		}
	}
	if len(counts) == 0 {
		return ""
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].n > counts[j].n })

	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.name, c.n)
	}
	return "Missing values by column: " + strings.Join(parts, ", ")
}

// topByMean picks the highest mean; ties keep column order.
func topByMean(nums []table.Column) (string, float64, bool) {
	var (
		name  string
		best  float64
		found bool
	)
	for _, c := range nums {
		s, ok := Describe(c)
		if !ok {
			continue
		}
		if !found || s.Mean > best {
			name, best, found = c.Name, s.Mean, true
		}
	}
	return name, best, found
}

// trendLine reports the relative change of series between the first and last
// rows where both the first date-like column and series are present.
func trendLine(t *table.Table, series table.Column) string {
	dateCol, ok := dateLikeColumn(t)
	if !ok {
		return ""
	}

	parsed := 0
	for _, v := range dateCol.Values {
		if asTime(v) != nil {
			parsed++
		}
	}
	if parsed <= 1 {
		return ""
	}

	var (
		firstDate, lastDate any
		firstVal, lastVal   float64
		joined              int
	)
	for i, d := range dateCol.Values {
		v, ok := table.ToFloat(series.Values[i])
		if d == nil || !ok {
			continue
		}
		if joined == 0 {
			firstDate, firstVal = d, v
		}
		lastDate, lastVal = d, v
		joined++
	}
	if joined < 2 || firstVal == 0 {
		return ""
	}

	abs := firstVal
	if abs < 0 {
		abs = -abs
	}
	pct := (lastVal - firstVal) / abs * 100
	return fmt.Sprintf("From %s to %s, %s changed by %.2f%%.", table.Format(firstDate), table.Format(lastDate), series.Name, pct)
}

func dateLikeColumn(t *table.Table) (table.Column, bool) {
	for i := 0; i < t.NumCols(); i++ {
		c := t.ColumnAt(i)
		name := strings.ToLower(c.Name)
		if strings.Contains(name, "date") || strings.Contains(name, "time") {
			return c, true
		}
	}
	return table.Column{}, false
}

func asTime(v any) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &x
	default:
		return normalize.ParseDate(table.Format(v))
	}
}
