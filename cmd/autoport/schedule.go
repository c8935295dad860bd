package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/exitcode"
	"github.com/gyeh/autoport/internal/scheduler"
)

var triggerFlags scheduler.Flags

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run report jobs on a schedule (default: daily at 09:00)",
	RunE:  runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.BoolVar(&triggerFlags.Once, "once", false, "Run a single job and exit")
	f.BoolVar(&triggerFlags.Test, "test", false, "Run a job every minute, starting now")
	f.IntVar(&triggerFlags.Interval, "interval", 0, "Minutes between jobs, starting now")
	f.StringVar(&triggerFlags.Daily, "daily", "", "Daily run time as HH:MM")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	trigger, err := scheduler.ParseTrigger(triggerFlags)
	if err != nil {
		log.Error().Err(err).Msg("invalid schedule, no job scheduled")
		os.Exit(exitcode.UsageError)
	}
	if trigger.Kind == scheduler.Once {
		return runSingleJob(log)
	}

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
		log.Error().Err(err).Msg("failed to set up scheduler")
		os.Exit(exitcode.UsageError)
	}

	log.Info().Str("trigger", trigger.String()).Msg("scheduler starting (CTRL+C to stop)")
	return s.Start(ctx, trigger)
}
