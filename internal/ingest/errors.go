package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyeh/autoport/internal/model"
)

var (
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")
	ErrMissingColumns        = errors.New("missing required columns")
)

// UnsupportedSourceKindError is returned when no loader is registered for the
// resolved kind.
type UnsupportedSourceKindError struct {
	Kind model.SourceKind
}

func (e *UnsupportedSourceKindError) Error() string {
	return fmt.Sprintf("unsupported source kind %q", e.Kind)
}

func (e *UnsupportedSourceKindError) Is(target error) bool {
	return target == ErrUnsupportedSourceKind
}

// MissingColumnsError lists required columns absent from a loaded table.
// Missing is sorted and free of duplicates.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// HTTPStatusError is returned by LoadAPI for non-2xx responses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
