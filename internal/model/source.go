package model

import "strings"

// SourceKind selects the loader used for a source.
type SourceKind string

const (
	KindCSV   SourceKind = "csv"
	KindExcel SourceKind = "excel"
	KindJSON  SourceKind = "json"
	KindAPI   SourceKind = "api"
	KindLog   SourceKind = "log"
)

// AllSourceKinds lists the supported kinds in canonical order.
var AllSourceKinds = []SourceKind{KindCSV, KindExcel, KindJSON, KindAPI, KindLog}

// ParseSourceKind normalizes a user-supplied hint. The result is not validated;
// an unknown kind is rejected later by the dispatcher.
func ParseSourceKind(s string) SourceKind {
	return SourceKind(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether k is one of AllSourceKinds.
func (k SourceKind) Valid() bool {
	for _, known := range AllSourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// SourceDescriptor identifies one input for a single ingestion call.
type SourceDescriptor struct {
	// Location is a filesystem path or an http(s) URL.
	Location string
	// Kind overrides inference when non-empty.
	Kind SourceKind
	// Options are passed verbatim to the selected loader.
	Options map[string]string
	// RequiredColumns must all be present in the loaded table.
	RequiredColumns []string
}

// NewSourceDescriptor copies opts and required so later mutation by the caller
// cannot change the descriptor.
func NewSourceDescriptor(location string, kind SourceKind, opts map[string]string, required []string) SourceDescriptor {
	d := SourceDescriptor{Location: location, Kind: kind}
	if len(opts) > 0 {
		d.Options = make(map[string]string, len(opts))
		for k, v := range opts {
			d.Options[k] = v
		}
	}
	if len(required) > 0 {
		d.RequiredColumns = append([]string(nil), required...)
	}
	return d
}
