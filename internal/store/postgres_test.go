package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/autoport/internal/db"
	"github.com/gyeh/autoport/internal/model"
)

const (
	testPort     = 15433
	testDB       = "autoporttest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	pgOnce  sync.Once
	pg      *embeddedpostgres.EmbeddedPostgres
	pgErr   error
	testDSN string
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pg != nil {
		if err := pg.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
		}
	}
	os.Exit(code)
}

// postgresStore starts the shared embedded Postgres on first use and returns
// a store over a freshly truncated reports table.
func postgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() || os.Getenv("AUTOPORT_PG_TESTS") == "" {
		t.Skip("set AUTOPORT_PG_TESTS=1 to run Postgres store tests")
	}

	pgOnce.Do(func() {
		testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
			testUser, testPassword, testPort, testDB)
		pg = embeddedpostgres.NewDatabase(
			embeddedpostgres.DefaultConfig().
				Port(uint32(testPort)).
				Database(testDB).
				Username(testUser).
				Password(testPassword).
				Version(embeddedpostgres.V16).
				StartTimeout(30*time.Second),
		)
		if pgErr = pg.Start(); pgErr != nil {
			pg = nil
		}
	})
	require.NoError(t, pgErr, "start embedded postgres")

	ctx := context.Background()
	s, err := OpenPostgres(ctx, testDSN, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.pool.Exec(ctx, "TRUNCATE autoport.reports RESTART IDENTITY")
	require.NoError(t, err)
	return s
}

func TestPostgresStore_AppendAndRecent(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		rec := record(name, model.StatusSuccess, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Append(ctx, rec))
		assert.Equal(t, int64(i+1), rec.ID)
	}
	require.NoError(t, s.Append(ctx, model.NewReportMetadata("failed", nil, model.StatusFailure, "boom", base)))

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "failed", recent[0].Name)
	assert.Equal(t, model.StatusFailure, recent[0].Status)
	assert.Empty(t, recent[0].SourceFiles)
	assert.Equal(t, "third", recent[1].Name)
	assert.Equal(t, []string{"examples/sample.csv"}, recent[1].SourceFiles)
	assert.Equal(t, "2024-03-01T09:02:00.000000Z", recent[1].Timestamp)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPostgresStore_MigrationsAreIdempotent(t *testing.T) {
	s := postgresStore(t)
	applied, err := db.ApplyMigrations(context.Background(), s.pool, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}

func TestPostgresStore_ImportRecords(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "metadata.jsonl"))
	require.NoError(t, err)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		require.NoError(t, fs.Append(ctx, record(fmt.Sprintf("r%03d", i), model.StatusSuccess, base.Add(time.Duration(i)*time.Second))))
	}

	n, err := s.ImportRecords(ctx, fs)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), count)

	recent, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "r499", recent[0].Name)
}

func TestPostgresStore_ImportCorruptFile(t *testing.T) {
	s := postgresStore(t)
	path := filepath.Join(t.TempDir(), "metadata.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{broken\n"), 0644))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.ImportRecords(context.Background(), fs)
	assert.Error(t, err)
}

func TestPostgresStore_ImportRejectsBadTimestamp(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metadata.jsonl")
	lines := `{"name":"good","timestamp":"2024-03-01T09:00:00.000000Z","source_files":[],"status":"success","details":""}
{"name":"bad","timestamp":"yesterday","source_files":[],"status":"success","details":""}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.ImportRecords(ctx, fs)
	assert.ErrorContains(t, err, `invalid timestamp "yesterday"`)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
