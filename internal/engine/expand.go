package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// expandTemplate is a replacement string that has been pre-validated for
// capture-group references. It is compiled once
// per run by Compile, not per-match.
type expandTemplate struct {
	raw      string
	segments []expandSegment
}

type expandSegmentKind int

const (
	segLiteral expandSegmentKind = iota
	segIndex
	segName
)

type expandSegment struct {
	kind  expandSegmentKind
	text  string // literal text, or the group name
	index int    // group index, for segIndex
}

// compileExpandTemplate validates and compiles a replacement string
// containing $1/${12}/${name} references. A literal "$" must be written as
// "$$". Ambiguous sequences like "$1foo" (is the group "1" or "1foo"?) are
// rejected unless braces disambiguate them ("${1}foo").
func compileExpandTemplate(raw string) (*expandTemplate, error) {
	var segs []expandSegment
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			segs = append(segs, expandSegment{kind: segLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '$' {
			lit.WriteRune(c)
			continue
		}
		if i+1 >= len(runes) {
			return nil, fmt.Errorf("replacement ends with a bare %q", "$")
		}
		next := runes[i+1]
		switch {
		case next == '$':
			lit.WriteRune('$')
			i++
		case next == '{':
			close := -1
			for j := i + 2; j < len(runes); j++ {
				if runes[j] == '}' {
					close = j
					break
				}
			}
			if close < 0 {
				return nil, fmt.Errorf("unterminated %q reference starting at position %d", "${", i)
			}
			ref := string(runes[i+2 : close])
			if ref == "" {
				return nil, fmt.Errorf("empty capture reference %q", "${}")
			}
			flushLit()
			if n, err := strconv.Atoi(ref); err == nil {
				segs = append(segs, expandSegment{kind: segIndex, index: n})
			} else {
				segs = append(segs, expandSegment{kind: segName, text: ref})
			}
			i = close
		case isDigit(next):
			j := i + 1
			for j < len(runes) && isDigit(runes[j]) {
				j++
			}
			// Ambiguous if a non-digit, non-delimiter character follows
			// immediately (e.g. "$1foo"): the spec requires braces in that
			// case to disambiguate the group boundary.
			if j < len(runes) && isIdentChar(runes[j]) {
				return nil, fmt.Errorf(
					"ambiguous capture reference %q: wrap in braces, e.g. ${%s}%s",
					string(runes[i:j+1]), string(runes[i+1:j]), string(runes[j]))
			}
			flushLit()
			n, _ := strconv.Atoi(string(runes[i+1 : j]))
			segs = append(segs, expandSegment{kind: segIndex, index: n})
			i = j - 1
		default:
			return nil, fmt.Errorf("invalid capture reference at position %d: %q", i, string(next))
		}
	}
	flushLit()

	return &expandTemplate{raw: raw, segments: segs}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isDigit(r)
}

// Expand resolves every segment against the given match's capture groups. A
// reference to an absent group is a hard error for the item.
func (t *expandTemplate) Expand(m span) (string, error) {
	var out strings.Builder
	for _, seg := range t.segments {
		switch seg.kind {
		case segLiteral:
			out.WriteString(seg.text)
		case segIndex:
			if seg.index < 0 || seg.index >= len(m.Groups) {
				return "", fmt.Errorf("replacement references group $%d, which does not exist in the match", seg.index)
			}
			out.WriteString(m.Groups[seg.index])
		case segName:
			found := false
			for i, name := range m.GroupNames {
				if name == seg.text {
					out.WriteString(m.Groups[i])
					found = true
					break
				}
			}
			if !found {
				return "", fmt.Errorf("replacement references named group ${%s}, which does not exist in the match", seg.text)
			}
		}
	}
	return out.String(), nil
}
