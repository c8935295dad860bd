package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/db"
	"github.com/gyeh/autoport/internal/exitcode"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/store"
)

var importFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply metadata store migrations to Postgres",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&importFile, "import", "", "Bulk-load a JSON-lines metadata file after migrating")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	applied, err := db.ApplyMigrations(ctx, pool, log)
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.StoreError)
	}
	log.Info().Int("applied", applied).Msg("all migrations applied successfully")

	if importFile == "" {
		return nil
	}
	src, err := store.NewFileStore(importFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to open metadata file")
		os.Exit(exitcode.UsageError)
	}
	n, err := store.NewPostgresStore(pool, logging.Component(log, "store")).ImportRecords(ctx, src)
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		os.Exit(exitcode.StoreError)
	}
	log.Info().Int64("rows", n).Str("file", importFile).Msg("metadata imported")
	return nil
}
