package report

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gyeh/autoport/internal/normalize"
	"github.com/gyeh/autoport/internal/table"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// chartFile is the file name of a column's chart.
func chartFile(column string) string {
	return normalize.FileName(column) + ".png"
}

// lineChart plots the present values of c against their row position.
func lineChart(c table.Column, path string) error {
	pts := make(plotter.XYs, 0, c.Len())
	for i, v := range c.Values {
		if f, ok := table.ToFloat(v); ok {
			pts = append(pts, plotter.XY{X: float64(i), Y: f})
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("column %q has no values to plot", c.Name)
	}

	p := plot.New()
	p.Title.Text = c.Name
	p.Y.Label.Text = c.Name

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot %q: %w", c.Name, err)
	}
	p.Add(line)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}
