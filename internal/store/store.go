// Package store persists one metadata record per report job. Records are
// append-only.
package store

import (
	"context"

	"github.com/gyeh/autoport/internal/model"
)

// Store is an append-only log of report runs.
type Store interface {
	// Append assigns rec.ID and persists it.
	Append(ctx context.Context, rec *model.ReportMetadata) error
	// Recent returns up to limit records, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]model.ReportMetadata, error)
	Close() error
}
