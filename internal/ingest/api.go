package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gyeh/autoport/internal/table"
)

// DefaultAPITimeout bounds a single API request.
const DefaultAPITimeout = 10 * time.Second

// HTTPDoer executes HTTP requests; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIClient is used by LoadAPI.
var APIClient HTTPDoer = &http.Client{}

// LoadAPI fetches url with GET and turns the JSON body into rows. An array
// body yields one row per element. For an object body the first field, in
// document order, holding an array is the row source; an object without one
// becomes a single row.
//
// Options: timeout (Go duration or whole seconds), extract_path (dot path to
// the field holding the rows, overriding the first-array rule), header.<Name>.
func LoadAPI(ctx context.Context, url string, opts Options) (*table.Table, error) {
	if err := opts.check("api", "timeout", "extract_path", "header."); err != nil {
		return nil, err
	}
	timeout, err := apiTimeout(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range opts {
		if name, ok := strings.CutPrefix(key, "header."); ok {
			req.Header.Set(name, value)
		}
	}

	resp, err := APIClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := decodeDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return normalizeBody(doc, opts["extract_path"])
}

func apiTimeout(opts Options) (time.Duration, error) {
	raw, ok := opts["timeout"]
	if !ok || strings.TrimSpace(raw) == "" {
		return DefaultAPITimeout, nil
	}
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("api loader: invalid timeout %q", raw)
	}
	return d, nil
}

// normalizeBody applies the row extraction rules of LoadAPI.
func normalizeBody(doc any, extractPath string) (*table.Table, error) {
	if extractPath != "" {
		v, err := lookupPath(doc, extractPath)
		if err != nil {
			return nil, err
		}
		doc = v
	}

	switch v := doc.(type) {
	case []any:
		return flattenRows(v)
	case object:
		if extractPath == "" {
			for _, f := range v {
				if items, ok := f.Value.([]any); ok {
					return flattenRows(items)
				}
			}
		}
		return flattenRows([]any{v})
	default:
		return nil, fmt.Errorf("unsupported response body: expected JSON array or object, got %T", doc)
	}
}
