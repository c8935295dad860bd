// Package scheduler fires report jobs on a trigger and records each outcome:
// notification, optional artifact publishing and one metadata row.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/publish"
	"github.com/gyeh/autoport/internal/store"
)

// Runner executes one report job.
type Runner interface {
	Run(ctx context.Context) model.JobResult
}

// Notifier delivers a message on every configured channel.
type Notifier interface {
	Send(ctx context.Context, subject, msg string) []string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) {
		s.notifier = n
	}
}

func WithStore(st store.Store) Option {
	return func(s *Scheduler) {
		s.store = st
	}
}

// WithPublisher copies the artifacts of successful runs to repo.
func WithPublisher(repo publish.Repository) Option {
	return func(s *Scheduler) {
		s.publisher = repo
	}
}

// WithReport sets the name and sources recorded in the metadata rows.
func WithReport(name string, sources []string) Option {
	return func(s *Scheduler) {
		s.reportName = name
		s.sources = sources
	}
}

// Scheduler runs jobs one at a time.
type Scheduler struct {
	log        zerolog.Logger
	runner     Runner
	notifier   Notifier
	store      store.Store
	publisher  publish.Repository
	reportName string
	sources    []string

	running atomic.Bool
}

func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:        zerolog.Nop(),
		runner:     runner,
		reportName: "sample_report",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a job is in progress.
func (s *Scheduler) Running() bool { return s.running.Load() }

// TryRunJob runs a job unless one is already running, in which case it
// returns false without doing anything.
func (s *Scheduler) TryRunJob(ctx context.Context) (model.JobResult, bool) {
	if !s.running.CompareAndSwap(false, true) {
		return model.JobResult{}, false
	}
	defer s.running.Store(false)
	return s.runJob(ctx), true
}

func (s *Scheduler) runJob(ctx context.Context) model.JobResult {
	s.log.Info().Msg("scheduled job started")
	res := s.runner.Run(ctx)
	log := s.log.With().Str("run_id", res.RunID.String()).Logger()

	target := "report"
	if res.HTMLPath != nil {
		target = *res.HTMLPath
	}
	if s.notifier != nil {
		msg := "[AutoPort] Scheduled report generated: " + target
		sent := s.notifier.Send(ctx, "AutoPort Report: "+target, msg)
		log.Info().Strs("channels", sent).Msg("notifications sent")
	}

	if s.publisher != nil && res.Succeeded {
		keys, err := publish.Publish(ctx, s.publisher, log, res.RunID.String(), res.Artifacts())
		if err != nil {
			log.Warn().Err(err).Msg("artifact publishing incomplete")
		}
		log.Info().Strs("keys", keys).Msg("artifacts published")
	}

	if s.store != nil {
		rec := model.NewReportMetadata(s.reportName, s.sources, status(res), details(res), res.FinishedAt)
		if err := s.store.Append(ctx, rec); err != nil {
			log.Error().Err(err).Msg("failed to record report metadata")
		} else {
			log.Info().Int64("id", rec.ID).Str("status", string(rec.Status)).Msg("report metadata recorded")
		}
	}
	return res
}

func status(res model.JobResult) model.Status {
	if res.Succeeded {
		return model.StatusSuccess
	}
	return model.StatusFailure
}

func details(res model.JobResult) string {
	parts := []string{
		"run_id=" + res.RunID.String(),
		"strategy=" + res.Strategy.String(),
	}
	if res.HTMLPath != nil {
		parts = append(parts, "html="+*res.HTMLPath)
	}
	if res.Error != "" {
		parts = append(parts, "error="+res.Error)
	}
	return strings.Join(parts, " ")
}

// Start runs jobs on trigger until ctx is done. A Once trigger runs a single
// job and returns. On shutdown Start waits for the running job.
func (s *Scheduler) Start(ctx context.Context, trigger Trigger) error {
	if trigger.Kind == Once {
		s.log.Info().Msg("running a single job")
		s.TryRunJob(ctx)
		return nil
	}

	sched, err := trigger.Schedule()
	if err != nil {
		return fmt.Errorf("build schedule: %w", err)
	}

	logger := cronLogger{log: s.log}
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		if _, ok := s.TryRunJob(ctx); !ok {
			s.log.Warn().Msg("previous job still running, skipping")
		}
	}))

	c := cron.New(cron.WithLogger(logger))
	c.Schedule(sched, job)
	c.Start()
	s.log.Info().Str("trigger", trigger.String()).Msg("scheduler started")

	var wg sync.WaitGroup
	if trigger.Immediate() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	s.log.Info().Msg("stopping scheduler")
	<-c.Stop().Done()
	wg.Wait()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
