package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/config"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/store"
)

var (
	cfg        = config.Default()
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "autoport",
	Short: "Scheduled reports from CSV, Excel, JSON, API and log sources",
	Long: "Ingests tabular data from files, HTTP APIs and logs, summarizes it and renders " +
		"HTML/PDF reports with charts, on demand or on a schedule.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading the environment")
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string for the metadata store (or set AUTOPORT_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return err
		}
	}
	return cfg.LoadEnv(envFile)
}

func setupLogging() (zerolog.Logger, io.Closer) {
	return logging.Setup(logging.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStore returns the Postgres store when a DSN is configured and the
// JSON-lines file store otherwise.
func openStore(ctx context.Context, log zerolog.Logger) (store.Store, error) {
	log = logging.Component(log, "store")
	if cfg.DSN != "" {
		return store.OpenPostgres(ctx, cfg.DSN, log)
	}
	return store.NewFileStore(cfg.MetadataFile)
}
