// Package engine implements the replacement engine: per input item it
// applies the ordered list of operations, counts
// replacements, and produces transformed content plus an optional unified
// diff.
package engine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/harvx/rewrite/internal/plan"
)

// span is a half-open byte range [Start, End) in the content being searched,
// with the text already captured so capture-expansion can reference it
// without re-slicing.
type span struct {
	Start, End int
	Text       string
	// Groups holds named and indexed submatches for regex patterns. Index 0
	// is always the whole match and is also available via Text.
	Groups      []string
	GroupNames  []string // parallel to Groups; "" for unnamed groups
}

// matcher finds all non-overlapping, left-to-right matches of a single find
// pattern under a Plan's interpretation and case mode.
type matcher struct {
	mode CaseFoldedMode
	lit  string
	re   *regexp.Regexp
}

// CaseFoldedMode is the resolved (non-"smart") case behavior for one
// compiled pattern: smart mode is resolved once, at compile time, based on
// whether the find pattern contains an uppercase codepoint.
type CaseFoldedMode bool

const (
	FoldCase   CaseFoldedMode = true
	ExactCase  CaseFoldedMode = false
)

// ResolveCaseMode applies the smart-case rule: smart means insensitive
// unless the find pattern contains any uppercase codepoint.
func ResolveCaseMode(mode plan.CaseMode, find string) CaseFoldedMode {
	switch mode {
	case plan.CaseInsensitive:
		return FoldCase
	case plan.CaseSmart:
		for _, r := range find {
			if unicode.IsUpper(r) {
				return ExactCase
			}
		}
		return FoldCase
	default:
		return ExactCase
	}
}

// compileMatcher builds a matcher for one find pattern under the plan's
// interpretation mode. Regex patterns are compiled with the standard
// library's RE2-backed regexp package, chosen for its guaranteed linear-time
// matching with respect to input length -- a backtracking engine cannot make
// that guarantee for arbitrary user-supplied patterns.
func compileMatcher(find string, interp plan.PatternMode, fold CaseFoldedMode) (*matcher, error) {
	if interp == plan.PatternLiteral {
		lit := find
		if fold == FoldCase {
			lit = strings.ToLower(lit)
		}
		return &matcher{mode: fold, lit: lit}, nil
	}

	pattern := "(?m)" + find
	if fold == FoldCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling regex %q: %w", find, err)
	}
	return &matcher{mode: fold, re: re}, nil
}

// ValidatePattern reports whether find compiles under interp (and, for
// regex patterns, is valid RE2 syntax). planconfig calls this during plan
// normalization so a bad pattern fails before any item is processed, rather
// than surfacing mid-run on whichever item happens to hit it first.
func ValidatePattern(find string, interp plan.PatternMode) error {
	_, err := compileMatcher(find, interp, ExactCase)
	return err
}

// FindAll returns every non-overlapping, left-to-right match of m in
// content.
func (m *matcher) FindAll(content []byte) []span {
	if m.re != nil {
		return m.findAllRegex(content)
	}
	return m.findAllLiteral(content)
}

func (m *matcher) findAllLiteral(content []byte) []span {
	haystack := content
	needle := []byte(m.lit)
	if len(needle) == 0 {
		return nil
	}
	search := haystack
	if m.mode == FoldCase {
		search = []byte(strings.ToLower(string(haystack)))
	}

	var spans []span
	offset := 0
	for {
		idx := indexOf(search[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)
		spans = append(spans, span{
			Start: start,
			End:   end,
			Text:  string(haystack[start:end]),
		})
		offset = end
		if offset > len(search) {
			break
		}
	}
	return spans
}

func indexOf(haystack, needle []byte) int {
	return strings.Index(string(haystack), string(needle))
}

func (m *matcher) findAllRegex(content []byte) []span {
	locs := m.re.FindAllSubmatchIndex(content, -1)
	names := m.re.SubexpNames()
	spans := make([]span, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		groups := make([]string, 0, len(loc)/2)
		groupNames := make([]string, 0, len(loc)/2)
		for i := 0; i < len(loc); i += 2 {
			gs, ge := loc[i], loc[i+1]
			if gs < 0 || ge < 0 {
				groups = append(groups, "")
			} else {
				groups = append(groups, string(content[gs:ge]))
			}
			idx := i / 2
			if idx < len(names) {
				groupNames = append(groupNames, names[idx])
			} else {
				groupNames = append(groupNames, "")
			}
		}
		spans = append(spans, span{
			Start:      start,
			End:        end,
			Text:       string(content[start:end]),
			Groups:     groups,
			GroupNames: groupNames,
		})
	}
	return spans
}
