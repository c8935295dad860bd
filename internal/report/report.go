// Package report renders a table and its summary into HTML, PDF, chart and
// data snapshot artifacts.
package report

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/osteele/liquid"
	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/normalize"
	"github.com/gyeh/autoport/internal/parquetio"
	"github.com/gyeh/autoport/internal/table"
)

//go:embed templates/report.liquid
var reportTemplate string

// ChartsDir is the chart subdirectory of the reports directory.
const ChartsDir = "charts"

// DefaultPreviewRows is the number of rows shown in the HTML data preview.
const DefaultPreviewRows = 50

var now = time.Now

// HTMLPath returns where the HTML report for name is written.
func HTMLPath(dir, name string) string {
	return filepath.Join(dir, normalize.FileName(name)+".html")
}

// PDFPath returns where the PDF report for name is written.
func PDFPath(dir, name string) string {
	return filepath.Join(dir, normalize.FileName(name)+".pdf")
}

// DataPath returns where the Parquet snapshot for name is written.
func DataPath(dir, name string) string {
	return filepath.Join(dir, normalize.FileName(name)+".parquet")
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

func WithPreviewRows(n int) Option {
	return func(r *Renderer) {
		r.previewRows = n
	}
}

// WithoutPDF turns off PDF output.
func WithoutPDF() Option {
	return func(r *Renderer) {
		r.pdf = false
	}
}

// WithoutSnapshot turns off the Parquet data snapshot.
func WithoutSnapshot() Option {
	return func(r *Renderer) {
		r.snapshot = false
	}
}

// Renderer writes report artifacts into a directory.
type Renderer struct {
	dir         string
	log         zerolog.Logger
	previewRows int
	pdf         bool
	snapshot    bool
	tpl         *liquid.Template
}

// NewRenderer parses the embedded report template.
func NewRenderer(dir string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		dir:         dir,
		log:         zerolog.Nop(),
		previewRows: DefaultPreviewRows,
		pdf:         true,
		snapshot:    true,
	}
	for _, opt := range opts {
		opt(r)
	}

	tpl, err := liquid.NewEngine().ParseString(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	r.tpl = tpl
	return r, nil
}

// Dir returns the reports directory.
func (r *Renderer) Dir() string { return r.dir }

// Render writes {name}.html and, best effort, the charts, {name}.pdf and
// {name}.parquet. Only a failure to produce the HTML is returned as an error.
func (r *Renderer) Render(ctx context.Context, t *table.Table, summary, name string) (model.Artifacts, error) {
	if t == nil {
		return model.Artifacts{}, errors.New("render: no data")
	}
	chartsDir := filepath.Join(r.dir, ChartsDir)
	if err := os.MkdirAll(chartsDir, 0755); err != nil {
		return model.Artifacts{}, fmt.Errorf("create reports directory: %w", err)
	}

	title := "AutoPort Report — " + name
	generatedOn := now().UTC().Format("2006-01-02 15:04 UTC")
	stats := describeTable(t)

	charts, chartRefs := r.renderCharts(ctx, t, chartsDir)

	html, err := r.renderHTML(t, title, generatedOn, summary, stats, chartRefs)
	if err != nil {
		return model.Artifacts{}, err
	}
	htmlPath := HTMLPath(r.dir, name)
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return model.Artifacts{}, fmt.Errorf("write html report: %w", err)
	}
	r.log.Info().Str("path", htmlPath).Msg("wrote HTML report")

	artifacts := model.Artifacts{HTMLPath: htmlPath, ChartPaths: charts}

	if r.pdf {
		pdfPath := PDFPath(r.dir, name)
		content := pdfContent{Title: title, GeneratedOn: generatedOn, Summary: summary, Stats: stats, Charts: charts}
		if err := writePDF(pdfPath, content); err != nil {
			r.log.Warn().Err(err).Msg("PDF report not created")
			os.Remove(pdfPath)
		} else {
			r.log.Info().Str("path", pdfPath).Msg("wrote PDF report")
			artifacts.PDFPath = &pdfPath
		}
	}

	if r.snapshot {
		dataPath := DataPath(r.dir, name)
		if err := parquetio.WriteTable(dataPath, t); err != nil {
			r.log.Warn().Err(err).Msg("data snapshot not created")
			os.Remove(dataPath)
		} else {
			r.log.Info().Str("path", dataPath).Int("rows", t.NumRows()).Msg("wrote data snapshot")
			artifacts.DataPath = &dataPath
		}
	}
	return artifacts, nil
}

// renderCharts draws one chart per numeric column. It returns the file paths
// and the paths relative to the reports directory.
func (r *Renderer) renderCharts(ctx context.Context, t *table.Table, chartsDir string) ([]string, []string) {
	var paths, refs []string
	used := make(map[string]bool)
	for _, c := range t.NumericColumns() {
		if ctx.Err() != nil {
			break
		}
		file := chartFile(c.Name)
		for i := 2; used[file]; i++ {
			file = fmt.Sprintf("%s_%d.png", normalize.FileName(c.Name), i)
		}
		used[file] = true

		path := filepath.Join(chartsDir, file)
		if err := lineChart(c, path); err != nil {
			r.log.Warn().Err(err).Str("column", c.Name).Msg("could not plot column")
			continue
		}
		paths = append(paths, path)
		refs = append(refs, ChartsDir+"/"+file)
	}
	return paths, refs
}

func (r *Renderer) renderHTML(t *table.Table, title, generatedOn, summary string, stats []ColumnStats, charts []string) (string, error) {
	statBindings := make([]map[string]any, len(stats))
	for i, s := range stats {
		statBindings[i] = s.binding()
	}

	head := t.Head(r.previewRows)
	rows := make([][]string, head.NumRows())
	for i := range rows {
		values := head.Row(i)
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = table.Format(v)
		}
		rows[i] = cells
	}

	out, err := r.tpl.RenderString(liquid.Bindings{
		"title":        title,
		"generated_on": generatedOn,
		"summary_text": summary,
		"has_summary":  summary != "",
		"row_count":    t.NumRows(),
		"column_count": t.NumCols(),
		"stats":        statBindings,
		"has_stats":    len(statBindings) > 0,
		"headers":      t.Columns(),
		"rows":         rows,
		"charts":       charts,
		"has_charts":   len(charts) > 0,
	})
	if err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return out, nil
}
