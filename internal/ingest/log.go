package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gyeh/autoport/internal/table"
)

const maxLogLine = 16 << 20

// ParseLog reads a text file line by line. Each non-blank line, trimmed,
// becomes a row {raw: line, parts: whitespace separated tokens}. Invalid UTF-8
// bytes are dropped.
func ParseLog(ctx context.Context, path string, opts Options) (*table.Table, error) {
	if err := opts.check("log"); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	b := table.NewBuilder()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLogLine)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(strings.ToValidUTF8(sc.Text(), ""))
		if line == "" {
			continue
		}
		b.AddRecord([]table.Field{
			{Name: "raw", Value: line},
			{Name: "parts", Value: strings.Fields(line)},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return b.Build()
}
