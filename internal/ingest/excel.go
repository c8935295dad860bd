package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/autoport/internal/table"
)

// LoadExcel reads one worksheet with excelize; the first row is the header.
//
// Options: sheet (default: first sheet), parse_dates.
func LoadExcel(ctx context.Context, path string, opts Options) (*table.Table, error) {
	if err := opts.check("excel", "sheet", "parse_dates"); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts["sheet"]
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: no columns to parse", sheet)
	}

	b := table.NewBuilder(rows[0]...)
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.AddText(row)
	}
	b.ParseDates(opts.list("parse_dates")...)
	return b.Build()
}
