package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/exitcode"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one report job, notify and record it",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	return runSingleJob(log)
}

func runSingleJob(log zerolog.Logger) error {
	ctx, stop := signalContext()
	defer stop()

	st, err := openStore(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open metadata store")
		os.Exit(exitcode.StoreError)
	}
	defer st.Close()

	s, err := newScheduler(ctx, log, st)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up job")
		os.Exit(exitcode.UsageError)
	}

	res, _ := s.TryRunJob(ctx)
	if !res.Succeeded {
		log.Error().Str("error", res.Error).Msg("report job failed")
		os.Exit(exitcode.JobFailed)
	}

	html := "report"
	if res.HTMLPath != nil {
		html = *res.HTMLPath
	}
	fmt.Printf("Report job %s succeeded via %s: %s (%.1fs)\n",
		res.RunID, res.Strategy, html, res.FinishedAt.Sub(res.StartedAt).Seconds())
	return nil
}
