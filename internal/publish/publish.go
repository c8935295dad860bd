// Package publish copies finished report artifacts to an archive, either a
// local directory tree or an S3 bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/config"
	"github.com/gyeh/autoport/internal/model"
)

// Repository stores one object per key.
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
}

// FromConfig returns the configured repository, or nil when publishing is
// disabled.
func FromConfig(ctx context.Context, cfg config.PublishConfig, log zerolog.Logger) (Repository, error) {
	switch cfg.Target {
	case "":
		return nil, nil
	case "local":
		return NewLocal(cfg.LocalPath, WithLocalPrefix(cfg.Prefix), WithLocalLogger(log)), nil
	case "s3":
		return NewS3(ctx,
			WithRegion(cfg.S3.Region),
			WithBucket(cfg.S3.Bucket),
			WithPrefix(cfg.Prefix),
			WithEndpoint(cfg.S3.Endpoint),
			WithForcePathStyle(cfg.S3.ForcePathStyle),
			WithStaticCredentials(cfg.S3.AccessKey, cfg.S3.SecretKey),
			WithLogger(log),
		)
	default:
		return nil, fmt.Errorf("unknown publish target %q", cfg.Target)
	}
}

// Publish writes every artifact file under "{runID}/" and returns the keys
// written. Keys keep each file's path relative to the HTML report so the
// archived page still finds its charts. It keeps going after a failed file and returns the joined
// errors.
func Publish(ctx context.Context, repo Repository, log zerolog.Logger, runID string, a model.Artifacts) ([]string, error) {
	files := []string{a.HTMLPath}
	if a.PDFPath != nil {
		files = append(files, *a.PDFPath)
	}
	if a.DataPath != nil {
		files = append(files, *a.DataPath)
	}
	files = append(files, a.ChartPaths...)

	base := filepath.Dir(a.HTMLPath)
	var (
		keys []string
		errs []error
	)
	for _, file := range files {
		if file == "" {
			continue
		}
		key := path.Join(runID, artifactKey(base, file))
		if err := writeFile(ctx, repo, key, file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("publish failed")
			errs = append(errs, err)
			continue
		}
		keys = append(keys, key)
	}
	log.Info().Str("run_id", runID).Int("published", len(keys)).Int("failed", len(errs)).Msg("artifacts published")
	return keys, errors.Join(errs...)
}

// artifactKey is file relative to base in slash form, or its base name when
// file lies outside base.
func artifactKey(base, file string) string {
	rel, err := filepath.Rel(base, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

func writeFile(ctx context.Context, repo Repository, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	if err := repo.Write(ctx, key, f); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
