package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control where and how log lines are written.
type Options struct {
	// Format is "text" (human-friendly console) or "json" (structured).
	Format string
	// Level is a zerolog level name; empty or unknown means info.
	Level string
	// File, when set, receives a JSON copy of every line, rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Out defaults to os.Stderr.
	Out io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup initializes a zerolog.Logger. The returned Closer flushes and closes
// the log file, if any.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Format == "text" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	var closer io.Closer = nopCloser{}
	w := out
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err == nil {
			lj := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    orDefault(opts.MaxSizeMB, 5),
				MaxBackups: orDefault(opts.MaxBackups, 3),
			}
			w = zerolog.MultiLevelWriter(out, lj)
			closer = lj
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer
}

// Component returns a sub-logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
