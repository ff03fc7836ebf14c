package resolve

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFilter applies include and exclude glob filtering to resolved paths:
// include globs are applied first (retain only matches), then exclude globs
// (drop matches). No OR-with-extensions shorthand, no precedence inversion --
// excludes do NOT win over includes; they are sequential stages, not
// combined predicates.
type GlobFilter struct {
	includes []string
	excludes []string
	logger   *slog.Logger
}

// NewGlobFilter creates a GlobFilter from include/exclude pattern lists.
// Copies are made of both slices to prevent external mutation.
func NewGlobFilter(includes, excludes []string) *GlobFilter {
	inc := make([]string, len(includes))
	copy(inc, includes)
	exc := make([]string, len(excludes))
	copy(exc, excludes)
	return &GlobFilter{
		includes: inc,
		excludes: exc,
		logger:   slog.Default().With("component", "glob-filter"),
	}
}

// HasFilters reports whether any include or exclude pattern is configured.
func (f *GlobFilter) HasFilters() bool {
	return len(f.includes) > 0 || len(f.excludes) > 0
}

// Keep reports whether path survives the include-then-exclude pipeline.
// Step 1: if include patterns are configured, path must match at least one.
// Step 2: if path matches any exclude pattern, it is dropped regardless.
func (f *GlobFilter) Keep(path string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	base := normalized[strings.LastIndex(normalized, "/")+1:]

	// A pattern without a '/' is matched against the base name, so "*.txt"
	// selects b.txt in any directory; other patterns see the whole path.
	match := func(pattern string) (bool, error) {
		if !strings.Contains(pattern, "/") {
			return doublestar.Match(pattern, base)
		}
		return doublestar.Match(pattern, normalized)
	}

	if len(f.includes) > 0 {
		matched := false
		for _, pattern := range f.includes {
			ok, err := match(pattern)
			if err != nil {
				f.logger.Debug("invalid include pattern", "pattern", pattern, "error", err)
				continue
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range f.excludes {
		ok, err := match(pattern)
		if err != nil {
			f.logger.Debug("invalid exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return false
		}
	}

	return true
}
