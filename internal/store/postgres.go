package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/db"
	"github.com/gyeh/autoport/internal/model"
	embedsql "github.com/gyeh/autoport/internal/sql"
)

var reportsTable = pgx.Identifier{"autoport", "reports"}

// PostgresStore keeps records in autoport.reports. The schema is created by
// db.ApplyMigrations.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
	own  bool
}

// NewPostgresStore wraps an existing pool; Close leaves the pool open.
func NewPostgresStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log}
}

// OpenPostgres connects to dsn and applies pending migrations.
func OpenPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, log: log, own: true}, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec *model.ReportMetadata) error {
	ts, err := rec.Time()
	if err != nil {
		return fmt.Errorf("metadata timestamp: %w", err)
	}
	sources := rec.SourceFiles
	if sources == nil {
		sources = []string{}
	}
	if err := s.pool.QueryRow(ctx, embedsql.InsertReport,
		rec.Name, ts, sources, string(rec.Status), rec.Details,
	).Scan(&rec.ID); err != nil {
		return fmt.Errorf("insert report metadata: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]model.ReportMetadata, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.pool.Query(ctx, embedsql.RecentReports, lim)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []model.ReportMetadata
	for rows.Next() {
		var (
			rec    model.ReportMetadata
			ts     time.Time
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &ts, &rec.SourceFiles, &status, &rec.Details); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Timestamp = ts.UTC().Format(model.TimestampFormat)
		rec.Status = model.Status(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, embedsql.CountReports).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

// ImportRecords bulk-loads every record of a file store with COPY. Imported
// rows get new ids in file order.
func (s *PostgresStore) ImportRecords(ctx context.Context, src *FileStore) (int64, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan *model.ReportMetadata, 256)
	source := db.NewChannelSource(ch)

	go func() {
		defer close(ch)
		err := src.Each(func(rec model.ReportMetadata) error {
			if _, err := rec.Time(); err != nil {
				return fmt.Errorf("report %q: invalid timestamp %q: %w", rec.Name, rec.Timestamp, err)
			}
			select {
			case ch <- &rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			source.Fail(err)
		}
	}()

	n, err := s.pool.CopyFrom(ctx, reportsTable, model.CopyColumns, source)
	if err != nil {
		return 0, fmt.Errorf("copy reports: %w", err)
	}

	s.log.Info().
		Int64("rows", n).
		Str("file", src.Path()).
		Dur("duration", time.Since(start)).
		Msg("imported metadata records")
	return n, nil
}

// Close releases the pool when the store opened it.
func (s *PostgresStore) Close() error {
	if s.own {
		s.pool.Close()
	}
	return nil
}

var _ pgx.CopyFromSource = (*db.ChannelSource[*model.ReportMetadata])(nil)
