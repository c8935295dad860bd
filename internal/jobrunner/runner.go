// Package jobrunner runs one report job through a fixed fallback chain: the
// in-process pipeline first, then the whole pipeline in a child process.
package jobrunner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/report"
	"github.com/gyeh/autoport/internal/table"
)

var now = time.Now

// DefaultTimeout is the budget of each strategy.
const DefaultTimeout = 5 * time.Minute

// DataLoader produces the table a report is built from.
type DataLoader interface {
	LoadData(ctx context.Context) (*table.Table, error)
}

// ReportWriter turns a table, possibly nil, into report artifacts.
type ReportWriter interface {
	WriteReport(ctx context.Context, t *table.Table) (model.Artifacts, error)
}

var (
	errNoWriter  = errors.New("no report writer registered")
	errNoCommand = errors.New("no isolated command available")
)

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

func WithLoader(l DataLoader) Option {
	return func(r *Runner) {
		r.loader = l
	}
}

func WithWriter(w ReportWriter) Option {
	return func(r *Runner) {
		r.writer = w
	}
}

func WithProcessRunner(p ProcessRunner) Option {
	return func(r *Runner) {
		r.process = p
	}
}

// WithCommand sets the child command of the isolated strategy. An empty
// command keeps the default: this executable with "pipeline --result-json".
func WithCommand(argv ...string) Option {
	return func(r *Runner) {
		r.command = argv
	}
}

// WithTimeout sets the budget of one strategy; d <= 0 is ignored.
func WithTimeout(s model.Strategy, d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeouts[s] = d
		}
	}
}

// WithReportLocation sets where the isolated pipeline writes its report when
// the child does not print its artifacts.
func WithReportLocation(dir, name string) Option {
	return func(r *Runner) {
		r.reportsDir = dir
		r.reportName = name
	}
}

// Runner executes the fallback chain. It holds no state between runs.
type Runner struct {
	log        zerolog.Logger
	loader     DataLoader
	writer     ReportWriter
	process    ProcessRunner
	command    []string
	timeouts   map[model.Strategy]time.Duration
	reportsDir string
	reportName string
}

func New(opts ...Option) *Runner {
	r := &Runner{
		log:     zerolog.Nop(),
		process: ExecRunner{},
		timeouts: map[model.Strategy]time.Duration{
			model.InProcess:       DefaultTimeout,
			model.IsolatedProcess: DefaultTimeout,
		},
		reportsDir: "reports",
		reportName: "sample_report",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run tries each strategy in order and returns the terminal result. It never
// panics and never returns an error; failures are described in the result.
func (r *Runner) Run(ctx context.Context) model.JobResult {
	res := model.JobResult{RunID: uuid.New(), StartedAt: now().UTC()}
	log := r.log.With().Str("run_id", res.RunID.String()).Logger()
	log.Info().Msg("starting report job")

	var errs []string
	for _, s := range []model.Strategy{model.InProcess, model.IsolatedProcess} {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", s, err))
			break
		}
		start := now()
		a, err := r.attempt(ctx, log, s)
		if err == nil {
			res = res.WithArtifacts(a)
			res.Succeeded = true
			res.Strategy = s
			log.Info().
				Str("strategy", s.String()).
				Str("html", a.HTMLPath).
				Dur("duration", now().Sub(start)).
				Msg("report job succeeded")
			break
		}
		log.Warn().Err(err).Str("strategy", s.String()).Dur("duration", now().Sub(start)).Msg("strategy failed")
		errs = append(errs, fmt.Sprintf("%s: %v", s, err))
	}

	if !res.Succeeded {
		res.Error = strings.Join(errs, "; ")
		log.Error().Str("error", res.Error).Msg("report job failed on every strategy")
	}
	res.FinishedAt = now().UTC()
	return res
}

func (r *Runner) attempt(ctx context.Context, log zerolog.Logger, s model.Strategy) (model.Artifacts, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts[s])
	defer cancel()

	switch s {
	case model.InProcess:
		return r.inProcess(ctx, log)
	case model.IsolatedProcess:
		return r.isolated(ctx, log)
	}
	return model.Artifacts{}, fmt.Errorf("unknown strategy %d", s)
}

type outcome struct {
	artifacts model.Artifacts
	err       error
}

// inProcess calls the loader and writer on a separate goroutine so the
// strategy budget holds even when they ignore ctx. A call still running at
// the deadline is abandoned.
func (r *Runner) inProcess(ctx context.Context, log zerolog.Logger) (model.Artifacts, error) {
	if r.writer == nil {
		return model.Artifacts{}, errNoWriter
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Bytes("stack", debug.Stack()).Msg("in-process report job panicked")
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()

		var t *table.Table
		if r.loader != nil {
			var err error
			if t, err = r.loader.LoadData(ctx); err != nil {
				log.Warn().Err(err).Msg("data loader failed; continuing without data")
				t = nil
			} else if t != nil {
				log.Info().Int("rows", t.NumRows()).Int("columns", t.NumCols()).Msg("data loaded")
			}
		}
		a, err := r.writer.WriteReport(ctx, t)
		done <- outcome{artifacts: a, err: err}
	}()

	select {
	case o := <-done:
		return o.artifacts, o.err
	case <-ctx.Done():
		return model.Artifacts{}, fmt.Errorf("in-process run: %w", ctx.Err())
	}
}

func (r *Runner) isolated(ctx context.Context, log zerolog.Logger) (model.Artifacts, error) {
	argv := r.command
	if len(argv) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return model.Artifacts{}, fmt.Errorf("%w: %v", errNoCommand, err)
		}
		argv = []string{exe, "pipeline", "--result-json"}
	}

	log.Info().Strs("command", argv).Msg("running isolated pipeline")
	res, err := r.process.Run(ctx, argv[0], argv[1:])
	logLines(log, zerolog.InfoLevel, "stdout", res.Stdout)
	logLines(log, zerolog.WarnLevel, "stderr", res.Stderr)
	if err != nil {
		return model.Artifacts{}, fmt.Errorf("run %s: %w", argv[0], err)
	}
	log.Info().Int("exit_code", res.ExitCode).Msg("isolated pipeline finished")
	if res.ExitCode != 0 {
		return model.Artifacts{}, fmt.Errorf("isolated pipeline exited with status %d", res.ExitCode)
	}

	if a, ok := parseArtifacts(res.Stdout); ok {
		return a, nil
	}
	return r.conventionalArtifacts(), nil
}

// conventionalArtifacts are the paths the pipeline command writes by default.
// The PDF is listed only when it exists.
func (r *Runner) conventionalArtifacts() model.Artifacts {
	a := model.Artifacts{HTMLPath: report.HTMLPath(r.reportsDir, r.reportName)}
	pdf := report.PDFPath(r.reportsDir, r.reportName)
	if _, err := os.Stat(pdf); err == nil {
		a.PDFPath = &pdf
	}
	return a
}

// parseArtifacts reads the last non-blank stdout line as an artifacts
// document.
func parseArtifacts(stdout []byte) (model.Artifacts, bool) {
	lines := bytes.Split(bytes.TrimSpace(stdout), []byte("\n"))
	last := bytes.TrimSpace(lines[len(lines)-1])
	if len(last) == 0 || last[0] != '{' {
		return model.Artifacts{}, false
	}
	var a model.Artifacts
	if err := json.Unmarshal(last, &a); err != nil || a.HTMLPath == "" {
		return model.Artifacts{}, false
	}
	return a, true
}

func logLines(log zerolog.Logger, level zerolog.Level, stream string, out []byte) {
	if len(bytes.TrimSpace(out)) == 0 {
		return
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	var lines []string
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	log.WithLevel(level).Str("stream", stream).Strs("lines", lines).Msg("isolated pipeline output")
}
