package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/exitcode"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/server"
)

var (
	serveAddr string
	serveJobs bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report metadata and artifacts over HTTP",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", ":8080", "Listen address")
	f.BoolVar(&serveJobs, "jobs", true, "Allow POST /api/v1/jobs to run a report job")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx, stop := signalContext()
	defer stop()

	st, err := openStore(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open metadata store")
		os.Exit(exitcode.StoreError)
	}
	defer st.Close()

	var jobs server.JobTrigger
	if serveJobs {
		s, err := newScheduler(ctx, log, st)
		if err != nil {
			log.Error().Err(err).Msg("failed to set up jobs")
			os.Exit(exitcode.UsageError)
		}
		jobs = s
	}

	return server.NewServer(logging.Component(log, "server"), st, jobs, cfg.ReportsDir).Start(ctx, serveAddr)
}
