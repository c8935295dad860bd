package model

import "time"

// RunSummary captures metrics from a single pipeline run.
type RunSummary struct {
	ReportName     string
	Sources        []SourceInfo
	Rows           int
	Columns        int
	Summary        string
	Artifacts      Artifacts
	DurationIngest time.Duration
	DurationRender time.Duration
	DurationTotal  time.Duration
}

// SourceInfo describes one ingested source.
type SourceInfo struct {
	Location string
	Kind     SourceKind
	SHA256   string
	Size     int64
	Remote   bool
}
