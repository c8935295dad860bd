package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/jobrunner"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/notify"
	"github.com/gyeh/autoport/internal/pipeline"
	"github.com/gyeh/autoport/internal/publish"
	"github.com/gyeh/autoport/internal/scheduler"
	"github.com/gyeh/autoport/internal/store"
)

// isolatedCommand re-runs this binary's pipeline command with the same
// config file.
func isolatedCommand() ([]string, error) {
	if len(cfg.Job.IsolatedCommand) > 0 {
		return cfg.Job.IsolatedCommand, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	argv := []string{exe, "pipeline", "--result-json", "--log-format", "json", "--log-level", cfg.LogLevel}
	if configFile != "" {
		argv = append(argv, "--config", configFile)
	}
	return argv, nil
}

// newScheduler wires the job runner, notifier, publisher and store.
func newScheduler(ctx context.Context, log zerolog.Logger, st store.Store) (*scheduler.Scheduler, error) {
	p, err := pipeline.New(logging.Component(log, "pipeline"), &cfg, nil)
	if err != nil {
		return nil, err
	}
	argv, err := isolatedCommand()
	if err != nil {
		return nil, err
	}
	runner := jobrunner.New(
		jobrunner.WithLogger(logging.Component(log, "jobrunner")),
		jobrunner.WithLoader(p),
		jobrunner.WithWriter(p),
		jobrunner.WithCommand(argv...),
		jobrunner.WithTimeout(model.InProcess, cfg.Job.InProcessTimeout),
		jobrunner.WithTimeout(model.IsolatedProcess, cfg.Job.IsolatedTimeout),
		jobrunner.WithReportLocation(cfg.ReportsDir, cfg.ReportName),
	)

	notifier, err := notify.FromConfig(ctx, cfg.Notify, logging.Component(log, "notify"))
	if err != nil {
		return nil, err
	}

	opts := []scheduler.Option{
		scheduler.WithLogger(logging.Component(log, "scheduler")),
		scheduler.WithNotifier(notifier),
		scheduler.WithStore(st),
		scheduler.WithReport(cfg.ReportName, cfg.SourceLocations()),
	}
	repo, err := publish.FromConfig(ctx, cfg.Publish, logging.Component(log, "publish"))
	if err != nil {
		return nil, err
	}
	if repo != nil {
		opts = append(opts, scheduler.WithPublisher(repo))
	}
	return scheduler.New(runner, opts...), nil
}
