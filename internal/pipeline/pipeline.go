// Package pipeline runs ingest → summarize → render for the configured
// sources.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/config"
	"github.com/gyeh/autoport/internal/ingest"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/report"
	"github.com/gyeh/autoport/internal/summarize"
	"github.com/gyeh/autoport/internal/table"
)

const (
	PhasePreflight = "preflight"
	PhaseIngest    = "ingest"
	PhaseSummarize = "summarize"
	PhaseRender    = "render"
)

// ErrNoData is returned when there is no table to report on.
var ErrNoData = errors.New("no data")

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Pipeline holds the collaborators of one configured report. It implements
// the job runner's DataLoader and ReportWriter.
type Pipeline struct {
	log        zerolog.Logger
	sources    []model.SourceDescriptor
	name       string
	maxItems   int
	dispatcher *ingest.Dispatcher
	renderer   *report.Renderer

	mu    sync.Mutex
	infos []model.SourceInfo
}

// New builds a pipeline over sources. An empty sources list uses the
// configured ones.
func New(log zerolog.Logger, cfg *config.Config, sources []model.SourceDescriptor) (*Pipeline, error) {
	if len(sources) == 0 {
		sources = cfg.Descriptors()
	}
	if len(sources) == 0 {
		return nil, errors.New("no sources configured")
	}
	renderer, err := report.NewRenderer(cfg.ReportsDir, report.WithLogger(logging.Component(log, "report")))
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		log:        log,
		sources:    sources,
		name:       cfg.ReportName,
		maxItems:   cfg.SummaryMaxItems,
		dispatcher: ingest.NewDispatcher(logging.Component(log, "ingest")),
		renderer:   renderer,
	}, nil
}

// Sources returns the preflight results of the last LoadData call.
func (p *Pipeline) Sources() []model.SourceInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.SourceInfo(nil), p.infos...)
}

// LoadData ingests every source. The first source is the report's data and
// must load; the others are loaded for the log only and may fail.
func (p *Pipeline) LoadData(ctx context.Context) (*table.Table, error) {
	var infos []model.SourceInfo
	defer func() {
		p.mu.Lock()
		p.infos = infos
		p.mu.Unlock()
	}()

	var primary *table.Table
	for i, desc := range p.sources {
		info, err := Preflight(p.log, desc)
		if err != nil {
			if i == 0 {
				return nil, &PipelineError{Phase: PhasePreflight, Err: err}
			}
			p.log.Warn().Err(err).Str("source", desc.Location).Msg("skipping source")
			continue
		}
		infos = append(infos, info)

		t, err := p.dispatcher.Load(ctx, desc)
		if err != nil {
			if i == 0 {
				return nil, &PipelineError{Phase: PhaseIngest, Err: err}
			}
			p.log.Warn().Err(err).Str("source", desc.Location).Msg("secondary source failed to load")
			continue
		}
		if i == 0 {
			primary = t
			continue
		}
		p.log.Info().
			Str("source", desc.Location).
			Str("summary", summarize.Summarize(t, p.maxItems)).
			Msg("secondary source loaded")
	}
	return primary, nil
}

// Summarize digests t. A nil table is a summarize-phase error.
func (p *Pipeline) Summarize(t *table.Table) (string, error) {
	if t == nil {
		return "", &PipelineError{Phase: PhaseSummarize, Err: ErrNoData}
	}
	return summarize.Summarize(t, p.maxItems), nil
}

// WriteReport summarizes t and renders the report artifacts.
func (p *Pipeline) WriteReport(ctx context.Context, t *table.Table) (model.Artifacts, error) {
	summary, err := p.Summarize(t)
	if err != nil {
		return model.Artifacts{}, err
	}
	a, err := p.renderer.Render(ctx, t, summary, p.name)
	if err != nil {
		return model.Artifacts{}, &PipelineError{Phase: PhaseRender, Err: err}
	}
	return a, nil
}

// Run executes the full pipeline: preflight → ingest → summarize → render.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	totalStart := time.Now()

	// Phase 1: Ingest
	p.log.Info().Int("sources", len(p.sources)).Msg("starting ingest")
	ingestStart := time.Now()
	t, err := p.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	ingestDur := time.Since(ingestStart)

	// Phase 2: Summarize
	summary, err := p.Summarize(t)
	if err != nil {
		return nil, err
	}

	// Phase 3: Render
	p.log.Info().Str("report", p.name).Msg("rendering report")
	renderStart := time.Now()
	a, err := p.renderer.Render(ctx, t, summary, p.name)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseRender, Err: err}
	}

	rs := &model.RunSummary{
		ReportName:     p.name,
		Sources:        p.Sources(),
		Rows:           t.NumRows(),
		Columns:        t.NumCols(),
		Summary:        summary,
		Artifacts:      a,
		DurationIngest: ingestDur,
		DurationRender: time.Since(renderStart),
		DurationTotal:  time.Since(totalStart),
	}

	p.log.Info().
		Int("rows", rs.Rows).
		Int("columns", rs.Columns).
		Str("html", a.HTMLPath).
		Int("charts", len(a.ChartPaths)).
		Str("total_duration", rs.DurationTotal.String()).
		Msg("report pipeline complete")

	return rs, nil
}
