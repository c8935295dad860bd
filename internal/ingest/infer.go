package ingest

import (
	"path/filepath"
	"strings"

	"github.com/gyeh/autoport/internal/model"
)

// extensionKinds maps lower-case file extensions to source kinds. Anything not
// listed is read as CSV.
var extensionKinds = map[string]model.SourceKind{
	".csv":  model.KindCSV,
	".xls":  model.KindExcel,
	".xlsx": model.KindExcel,
	".json": model.KindJSON,
	".log":  model.KindLog,
	".txt":  model.KindLog,
}

// InferKind resolves the source kind for location. A non-empty hint wins and
// is returned lower-cased without validation; http(s) URLs are APIs; otherwise
// the extension decides, defaulting to CSV.
func InferKind(location string, hint model.SourceKind) model.SourceKind {
	if h := model.ParseSourceKind(string(hint)); h != "" {
		return h
	}
	if IsURL(location) {
		return model.KindAPI
	}
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(location))]; ok {
		return kind
	}
	return model.KindCSV
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
