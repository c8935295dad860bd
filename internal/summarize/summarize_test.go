package summarize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/autoport/internal/table"
)

func sales(t *testing.T) *table.Table {
	t.Helper()
	ids := make([]any, 10)
	dates := make([]any, 10)
	amounts := make([]any, 10)
	for i := range ids {
		ids[i] = int64(i + 1)
		dates[i] = time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
		amounts[i] = float64(i+1) * 10.5
	}
	tbl, err := table.New(
		table.Column{Name: "id", Kind: table.KindInt, Values: ids},
		table.Column{Name: "date", Kind: table.KindTime, Values: dates},
		table.Column{Name: "amount", Kind: table.KindFloat, Values: amounts},
	)
	require.NoError(t, err)
	return tbl
}

func TestSummarize_Sales(t *testing.T) {
	got := Summarize(sales(t), DefaultMaxItems)
	lines := strings.Split(got, "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Rows: 10, Columns: 3.", lines[0])
	assert.Equal(t, "Top numeric column by mean: amount (mean=57.75)", lines[1])
	assert.Equal(t, "id: sum=55.00, mean=5.50, min=1.00, max=10.00", lines[2])
	assert.Equal(t, "amount: sum=577.50, mean=57.75, min=10.50, max=105.00", lines[3])
	assert.Equal(t, "From 2024-01-01 to 2024-01-10, id changed by 900.00%.", lines[4])
}

func TestSummarize_MissingValuesOrder(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "a", Kind: table.KindString, Values: []any{nil, "x", "y"}},
		table.Column{Name: "b", Kind: table.KindString, Values: []any{nil, nil, "y"}},
		table.Column{Name: "c", Kind: table.KindString, Values: []any{"x", nil, "y"}},
	)
	require.NoError(t, err)

	got := Summarize(tbl, DefaultMaxItems)
	assert.Equal(t, "Rows: 3, Columns: 3.\nMissing values by column: b (2), a (1), c (1)", got)
}

func TestSummarize_MaxItems(t *testing.T) {
	got := Summarize(sales(t), 1)
	assert.Contains(t, got, "id: sum=")
	assert.NotContains(t, got, "amount: sum=")
}

func TestSummarize_TrendSkipsMissingRowsAndZeroStart(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "Timestamp", Kind: table.KindString, Values: []any{"2024-03-01", nil, "2024-03-03", "2024-03-04"}},
		table.Column{Name: "v", Kind: table.KindFloat, Values: []any{nil, 4.0, 2.0, 3.0}},
	)
	require.NoError(t, err)
	assert.Contains(t, Summarize(tbl, 3), "From 2024-03-03 to 2024-03-04, v changed by 50.00%.")

	tbl, err = table.New(
		table.Column{Name: "date", Kind: table.KindString, Values: []any{"2024-03-01", "2024-03-02"}},
		table.Column{Name: "v", Kind: table.KindInt, Values: []any{int64(0), int64(5)}},
	)
	require.NoError(t, err)
	assert.NotContains(t, Summarize(tbl, 3), "changed by")
}

func TestSummarize_NoNumericColumns(t *testing.T) {
	tbl, err := table.New(table.Column{Name: "raw", Kind: table.KindString, Values: []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "Rows: 2, Columns: 1.", Summarize(tbl, 3))
	assert.Equal(t, "Rows: 0, Columns: 0.", Summarize(nil, 3))
}

func TestDescribe(t *testing.T) {
	s, ok := Describe(table.Column{Name: "n", Kind: table.KindInt, Values: []any{int64(4), nil, int64(-2)}})
	require.True(t, ok)
	assert.Equal(t, Stats{Count: 2, Sum: 2, Mean: 1, Min: -2, Max: 4}, s)

	_, ok = Describe(table.Column{Name: "n", Kind: table.KindInt, Values: []any{nil}})
	assert.False(t, ok)
}
