package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

type pdfContent struct {
	Title       string
	GeneratedOn string
	Summary     string
	Stats       []ColumnStats
	Charts      []string
}

// writePDF lays out the summary, statistics and charts on A4 pages.
func writePDF(path string, c pdfContent) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(c.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(c.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated on "+c.GeneratedOn, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	summary := c.Summary
	if strings.TrimSpace(summary) == "" {
		summary = "No summary available."
	}
	pdf.MultiCell(0, 5, tr(summary), "", "L", false)
	pdf.Ln(4)

	if len(c.Stats) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Statistics", "", 1, "L", false, 0, "")
		header := []string{"column", "count", "missing", "mean", "min", "max", "unique"}
		widths := []float64{50, 20, 20, 25, 25, 25, 20}
		pdf.SetFont("Helvetica", "B", 8)
		for i, h := range header {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		for _, s := range c.Stats {
			cells := []string{truncate(s.Column, 30), fmt.Sprint(s.Count), fmt.Sprint(s.Missing), s.Mean, s.Min, s.Max, s.Unique}
			for i, cell := range cells {
				pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	for _, chart := range c.Charts {
		pdf.ImageOptions(chart, 15, pdf.GetY(), 150, 0, true, fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
