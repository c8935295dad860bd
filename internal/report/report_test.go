package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/autoport/internal/parquetio"
	"github.com/gyeh/autoport/internal/table"
)

func fixedNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func salesTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "id", Kind: table.KindInt, Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "region", Kind: table.KindString, Values: []any{"north", "south", "north"}},
		table.Column{Name: "unit price", Kind: table.KindFloat, Values: []any{2.5, nil, 4.0}},
	)
	require.NoError(t, err)
	return tbl
}

func TestRender_WritesAllArtifacts(t *testing.T) {
	fixedNow(t)
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	a, err := r.Render(context.Background(), salesTable(t), "Rows: 3, Columns: 3.\n<b>", "weekly sales")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "weekly_sales.html"), a.HTMLPath)
	html, err := os.ReadFile(a.HTMLPath)
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "AutoPort Report — weekly sales")
	assert.Contains(t, body, "Generated on 2024-05-06 07:08 UTC")
	assert.Contains(t, body, "Rows: 3, Columns: 3.")
	assert.Contains(t, body, "&lt;b&gt;")
	assert.NotContains(t, body, "<b>")
	assert.Contains(t, body, `src="charts/id.png"`)
	assert.Contains(t, body, `src="charts/unit_price.png"`)
	assert.Contains(t, body, "<td>south</td>")

	require.Len(t, a.ChartPaths, 2)
	for _, p := range a.ChartPaths {
		assert.FileExists(t, p)
	}

	require.NotNil(t, a.PDFPath)
	assert.Equal(t, filepath.Join(dir, "weekly_sales.pdf"), *a.PDFPath)
	assert.FileExists(t, *a.PDFPath)

	require.NotNil(t, a.DataPath)
	pr, err := parquetio.Open(*a.DataPath)
	require.NoError(t, err)
	defer pr.Close()
	assert.Equal(t, int64(3), pr.NumRows())
}

func TestRender_NonNumericTableHasNoCharts(t *testing.T) {
	tbl, err := table.New(table.Column{Name: "raw", Kind: table.KindString, Values: []any{"a", "b"}})
	require.NoError(t, err)

	r, err := NewRenderer(t.TempDir(), WithoutPDF(), WithoutSnapshot())
	require.NoError(t, err)
	a, err := r.Render(context.Background(), tbl, "", "logs")
	require.NoError(t, err)

	assert.Empty(t, a.ChartPaths)
	assert.Nil(t, a.PDFPath)
	assert.Nil(t, a.DataPath)
	html, err := os.ReadFile(a.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "No summary available.")
	assert.NotContains(t, string(html), "<h2>Charts</h2>")
}

func TestRender_PreviewIsLimited(t *testing.T) {
	values := make([]any, 120)
	for i := range values {
		values[i] = "row"
	}
	tbl, err := table.New(table.Column{Name: "v", Kind: table.KindString, Values: values})
	require.NoError(t, err)

	r, err := NewRenderer(t.TempDir(), WithPreviewRows(5), WithoutPDF(), WithoutSnapshot())
	require.NoError(t, err)
	a, err := r.Render(context.Background(), tbl, "", "limited")
	require.NoError(t, err)

	html, err := os.ReadFile(a.HTMLPath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(html), "<td>row</td>"))
}

func TestRender_NilTable(t *testing.T) {
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)
	_, err = r.Render(context.Background(), nil, "", "x")
	assert.Error(t, err)
}

func TestDescribeTable(t *testing.T) {
	stats := describeTable(salesTable(t))
	require.Len(t, stats, 3)

	assert.Equal(t, ColumnStats{Column: "id", Kind: "int", Count: 3, Mean: "2.00", Min: "1.00", Max: "3.00"}, stats[0])
	assert.Equal(t, ColumnStats{Column: "region", Kind: "string", Count: 3, Unique: "2"}, stats[1])
	assert.Equal(t, 1, stats[2].Missing)
	assert.Equal(t, "3.25", stats[2].Mean)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("reports", "sample_report.html"), HTMLPath("reports", "sample_report"))
	assert.Equal(t, filepath.Join("reports", "a_b.pdf"), PDFPath("reports", "a b"))
	assert.Equal(t, "unit_price.png", chartFile(" unit  price "))
}
