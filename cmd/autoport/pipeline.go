package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/exitcode"
	"github.com/gyeh/autoport/internal/logging"
	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/notify"
	"github.com/gyeh/autoport/internal/pipeline"
)

var (
	pipelineSources []string
	resultJSON      bool
	pipelineNotify  bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Ingest, summarize and render a report in this process",
	Long: "Runs the whole report pipeline without recording metadata. The first source is " +
		"the report's data; further sources are loaded and summarized in the log only. " +
		"A finished report is announced on the console, to NOTIFY_EMAIL and to WEBHOOK_URL " +
		"unless --notify=false or --result-json is given.",
	RunE: runPipeline,
}

func init() {
	f := pipelineCmd.Flags()
	f.StringArrayVar(&pipelineSources, "source", nil, "Source path or URL (repeatable; defaults to the configured sources)")
	f.BoolVar(&resultJSON, "result-json", false, "Print the artifact paths as JSON on the last stdout line")
	f.BoolVar(&pipelineNotify, "notify", true, "Announce the finished report")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx, stop := signalContext()
	defer stop()

	var sources []model.SourceDescriptor
	for _, loc := range pipelineSources {
		sources = append(sources, model.NewSourceDescriptor(loc, "", nil, nil))
	}

	p, err := pipeline.New(logging.Component(log, "pipeline"), &cfg, sources)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up pipeline")
		os.Exit(exitcode.UsageError)
	}

	summary, err := p.Run(ctx)
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("pipeline failed")
			switch pe.Phase {
			case pipeline.PhasePreflight:
				os.Exit(exitcode.ValidationError)
			case pipeline.PhaseIngest, pipeline.PhaseSummarize:
				os.Exit(exitcode.IngestError)
			default:
				os.Exit(exitcode.RenderError)
			}
		}
		log.Error().Err(err).Msg("pipeline failed")
		os.Exit(exitcode.RenderError)
	}

	if resultJSON {
		line, err := json.Marshal(summary.Artifacts)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
		return nil
	}

	fmt.Printf("Report complete: %d rows, %d columns -> %s (%.1fs)\n",
		summary.Rows, summary.Columns, summary.Artifacts.HTMLPath, summary.DurationTotal.Seconds())
	fmt.Println(summary.Summary)

	if pipelineNotify {
		n, err := notify.FromConfig(ctx, cfg.Notify, logging.Component(log, "notify"))
		if err != nil {
			log.Warn().Err(err).Msg("notifier unavailable")
			return nil
		}
		n.Notify(ctx, summary.Artifacts.HTMLPath, cfg.ReportName)
	}
	return nil
}
