package normalize

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// FileName turns a column or report name into a safe file name stem: whitespace
// runs become "_" and other characters outside [A-Za-z0-9._-] are dropped.
// Returns "unnamed" when nothing is left.
func FileName(name string) string {
	s := strings.TrimSpace(name)
	s = multiSpace.ReplaceAllString(s, "_")
	s = unsafeName.ReplaceAllString(s, "")
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}
