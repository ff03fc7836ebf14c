package engine

import (
	"strings"
	"unicode/utf8"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff computes a unified diff between before and after.
// If either side fails a UTF-8 validity check the diff is
// suppressed and isBinary is returned true; callers still report the
// success outcome, just without diff text.
func UnifiedDiff(path string, before, after []byte) (diffText string, isBinary bool, err error) {
	if !utf8.Valid(before) || !utf8.Valid(after) {
		return "", true, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", false, err
	}
	// GetUnifiedDiffString returns an empty string for identical inputs;
	// callers gate on Modified separately, so an empty diff is valid here.
	return strings.TrimRight(text, "\n"), false, nil
}
