package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/table"
)

// Loader parses one source into a table.
type Loader func(ctx context.Context, location string, opts Options) (*table.Table, error)

// Dispatcher resolves a source's kind and runs the matching loader.
type Dispatcher struct {
	log     zerolog.Logger
	loaders map[model.SourceKind]Loader
}

// NewDispatcher returns a dispatcher with the built-in loaders.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		log: log,
		loaders: map[model.SourceKind]Loader{
			model.KindCSV:   LoadCSV,
			model.KindExcel: LoadExcel,
			model.KindJSON:  LoadJSON,
			model.KindAPI:   LoadAPI,
			model.KindLog:   ParseLog,
		},
	}
}

// previewColumns is how many column names are logged after a load.
const previewColumns = 8

// Load resolves the source kind, runs its loader and validates the result.
func (d *Dispatcher) Load(ctx context.Context, desc model.SourceDescriptor) (*table.Table, error) {
	kind := InferKind(desc.Location, desc.Kind)
	loader, ok := d.loaders[kind]
	if !ok {
		return nil, &UnsupportedSourceKindError{Kind: kind}
	}

	d.log.Info().Str("source", desc.Location).Str("kind", string(kind)).Msg("loading source")
	t, err := loader(ctx, desc.Location, Options(desc.Options))
	if err != nil {
		return nil, fmt.Errorf("load %s source %s: %w", kind, desc.Location, err)
	}

	if err := Validate(d.log, t, desc.RequiredColumns); err != nil {
		return nil, err
	}

	cols := t.Columns()
	if len(cols) > previewColumns {
		cols = cols[:previewColumns]
	}
	d.log.Info().
		Str("source", desc.Location).
		Int("rows", t.NumRows()).
		Strs("columns", cols).
		Msg("source loaded")
	return t, nil
}

// Validate warns on an empty table and fails when required columns are absent.
func Validate(log zerolog.Logger, t *table.Table, required []string) error {
	if t.Empty() {
		log.Warn().Msg("loaded table is empty")
	}
	if len(required) == 0 {
		return nil
	}

	present := make(map[string]bool)
	if t != nil {
		for _, c := range t.Columns() {
			present[c] = true
		}
	}
	missingSet := make(map[string]bool)
	for _, name := range required {
		if !present[name] {
			missingSet[name] = true
		}
	}
	if len(missingSet) == 0 {
		return nil
	}
	missing := make([]string, 0, len(missingSet))
	for name := range missingSet {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return &MissingColumnsError{Missing: missing}
}
