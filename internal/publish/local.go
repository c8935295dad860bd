package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type LocalOption func(*Local)

// Local writes objects below a base directory.
type Local struct {
	basePath string
	prefix   string
	log      zerolog.Logger
}

func WithLocalPrefix(prefix string) LocalOption {
	return func(r *Local) {
		r.prefix = prefix
	}
}

func WithLocalLogger(log zerolog.Logger) LocalOption {
	return func(r *Local) {
		r.log = log
	}
}

func NewLocal(basePath string, opts ...LocalOption) *Local {
	r := &Local{
		basePath: basePath,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Local) Write(ctx context.Context, key string, reader io.Reader) error {
	fullPath := filepath.Join(
		r.basePath,
		r.prefix,
		filepath.FromSlash(key),
	)
	r.log.Debug().Str("path", fullPath).Msg("writing file")

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
