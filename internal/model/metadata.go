package model

import (
	"fmt"
	"time"
)

// Status of a recorded report run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// TimestampFormat is the UTC ISO-8601 layout used for persisted timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// ReportMetadata is one append-only row of the reports table.
type ReportMetadata struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Timestamp   string   `json:"timestamp"`
	SourceFiles []string `json:"source_files"`
	Status      Status   `json:"status"`
	Details     string   `json:"details"`
}

// NewReportMetadata stamps a record with the current UTC time. The id is
// assigned by the store.
func NewReportMetadata(name string, sources []string, status Status, details string, at time.Time) *ReportMetadata {
	return &ReportMetadata{
		Name:        name,
		Timestamp:   at.UTC().Format(TimestampFormat),
		SourceFiles: append([]string{}, sources...),
		Status:      status,
		Details:     details,
	}
}

// Time parses Timestamp. Records written by other tools may use plain
// RFC 3339.
func (m *ReportMetadata) Time() (time.Time, error) {
	if t, err := time.Parse(TimestampFormat, m.Timestamp); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, m.Timestamp)
}

// CopyColumns is the COPY column order of CopyValues.
var CopyColumns = []string{"name", "timestamp", "source_files", "status", "details"}

// CopyValues returns the record's values in CopyColumns order. The id is left
// to the database.
func (m *ReportMetadata) CopyValues() ([]any, error) {
	ts, err := m.Time()
	if err != nil {
		return nil, fmt.Errorf("report %q: invalid timestamp %q", m.Name, m.Timestamp)
	}
	sources := m.SourceFiles
	if sources == nil {
		sources = []string{}
	}
	return []any{m.Name, ts, sources, string(m.Status), m.Details}, nil
}
