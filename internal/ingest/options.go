package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// Options are loader-specific settings forwarded untouched by the dispatcher.
type Options map[string]string

// check rejects keys the loader does not understand. An allowed entry ending
// in "." accepts any key with that prefix.
func (o Options) check(loader string, allowed ...string) error {
	var unknown []string
	for key := range o {
		if !optionAllowed(key, allowed) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s loader: unknown option(s) %s", loader, strings.Join(unknown, ", "))
}

func optionAllowed(key string, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasSuffix(a, ".") {
			if strings.HasPrefix(key, a) && len(key) > len(a) {
				return true
			}
			continue
		}
		if key == a {
			return true
		}
	}
	return false
}

// list splits a comma separated option value, dropping blanks.
func (o Options) list(key string) []string {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flag reads "true"/"1"/"yes" as true.
func (o Options) flag(key string) bool {
	switch strings.ToLower(strings.TrimSpace(o[key])) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// ParseOptions turns "key=value" pairs, as given on the command line, into
// Options.
func ParseOptions(pairs []string) (Options, error) {
	opts := Options{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, expected key=value", p)
		}
		opts[key] = value
	}
	return opts, nil
}
