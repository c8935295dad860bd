package model

import (
	"time"

	"github.com/google/uuid"
)

// Strategy is one tier of the job fallback chain.
type Strategy int

const (
	// StrategyNone means no tier succeeded.
	StrategyNone Strategy = iota
	// InProcess calls the loader and report writer directly.
	InProcess
	// IsolatedProcess re-runs the whole pipeline as a child process.
	IsolatedProcess
)

func (s Strategy) String() string {
	switch s {
	case InProcess:
		return "in_process"
	case IsolatedProcess:
		return "isolated_process"
	default:
		return "none"
	}
}

// MarshalText lets the strategy appear by name in JSON and logs.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Artifacts are the files written for one report.
type Artifacts struct {
	HTMLPath   string   `json:"html"`
	PDFPath    *string  `json:"pdf"`
	ChartPaths []string `json:"charts"`
	DataPath   *string  `json:"data"`
}

// JobResult is the terminal outcome of one job execution.
type JobResult struct {
	RunID      uuid.UUID `json:"run_id"`
	HTMLPath   *string   `json:"html"`
	PDFPath    *string   `json:"pdf"`
	ChartPaths []string  `json:"charts"`
	DataPath   *string   `json:"data"`
	Succeeded  bool      `json:"succeeded"`
	Strategy   Strategy  `json:"strategy"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// WithArtifacts copies the artifact paths into the result.
func (r JobResult) WithArtifacts(a Artifacts) JobResult {
	if a.HTMLPath != "" {
		html := a.HTMLPath
		r.HTMLPath = &html
	}
	r.PDFPath = a.PDFPath
	r.DataPath = a.DataPath
	r.ChartPaths = append([]string(nil), a.ChartPaths...)
	return r
}

// Artifacts returns the paths as an Artifacts value.
func (r JobResult) Artifacts() Artifacts {
	a := Artifacts{
		PDFPath:    r.PDFPath,
		DataPath:   r.DataPath,
		ChartPaths: r.ChartPaths,
	}
	if r.HTMLPath != nil {
		a.HTMLPath = *r.HTMLPath
	}
	return a
}
