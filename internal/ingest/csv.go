package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gyeh/autoport/internal/table"
)

// LoadCSV reads a delimited file whose first record is the header.
//
// Options: delimiter, comment, lazy_quotes, parse_dates.
func LoadCSV(ctx context.Context, path string, opts Options) (*table.Table, error) {
	if err := opts.check("csv", "delimiter", "comment", "lazy_quotes", "parse_dates"); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = opts.flag("lazy_quotes")
	if d, ok := opts["delimiter"]; ok {
		if r.Comma, err = singleRune("delimiter", d); err != nil {
			return nil, err
		}
	}
	if c, ok := opts["comment"]; ok {
		if r.Comment, err = singleRune("comment", c); err != nil {
			return nil, err
		}
	}

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	b := table.NewBuilder(header...)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("csv record %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		b.AddText(rec)
	}
	b.ParseDates(opts.list("parse_dates")...)
	return b.Build()
}

func singleRune(name, value string) (rune, error) {
	if value == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("csv loader: %s must be a single character, got %q", name, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}
