package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/ingest"
	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/normalize"
)

// Preflight resolves the kind of a source and, for local files, checks the
// file exists and records its size and SHA-256. Remote sources are not
// fetched.
func Preflight(log zerolog.Logger, desc model.SourceDescriptor) (model.SourceInfo, error) {
	start := time.Now()
	info := model.SourceInfo{
		Location: desc.Location,
		Kind:     ingest.InferKind(desc.Location, desc.Kind),
		Remote:   ingest.IsURL(desc.Location),
	}
	if info.Remote {
		return info, nil
	}

	stat, err := os.Stat(desc.Location)
	if err != nil {
		return info, fmt.Errorf("preflight stat: %w", err)
	}
	if stat.IsDir() {
		return info, fmt.Errorf("preflight: %s is a directory", desc.Location)
	}
	info.Size = stat.Size()

	sha, err := normalize.FileHash(desc.Location)
	if err != nil {
		return info, fmt.Errorf("preflight hash: %w", err)
	}
	info.SHA256 = sha

	log.Info().
		Str("file", filepath.Base(desc.Location)).
		Str("kind", string(info.Kind)).
		Str("sha256", sha).
		Int64("size", info.Size).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")
	return info, nil
}
