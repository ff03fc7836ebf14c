package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/plan"
)

func TestResolveCaseMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FoldCase, ResolveCaseMode(plan.CaseInsensitive, "Anything"))
	assert.Equal(t, ExactCase, ResolveCaseMode(plan.CaseSensitive, "anything"))
	assert.Equal(t, FoldCase, ResolveCaseMode(plan.CaseSmart, "lowercase"))
	assert.Equal(t, ExactCase, ResolveCaseMode(plan.CaseSmart, "HasUpper"))
}

func TestMatcher_LiteralFindAll(t *testing.T) {
	t.Parallel()

	m, err := compileMatcher("foo", plan.PatternLiteral, ExactCase)
	require.NoError(t, err)

	spans := m.FindAll([]byte("foo bar foo baz foofoo"))
	require.Len(t, spans, 4)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 3, spans[0].End)
	assert.Equal(t, "foo", spans[0].Text)
}

func TestMatcher_LiteralFindAll_CaseFolded(t *testing.T) {
	t.Parallel()

	m, err := compileMatcher("foo", plan.PatternLiteral, FoldCase)
	require.NoError(t, err)

	spans := m.FindAll([]byte("FOO foo Foo"))
	require.Len(t, spans, 3)
	assert.Equal(t, "FOO", spans[0].Text)
}

func TestMatcher_RegexFindAll_WithGroups(t *testing.T) {
	t.Parallel()

	m, err := compileMatcher(`(?P<word>\w+)@(\w+)`, plan.PatternRegex, ExactCase)
	require.NoError(t, err)

	spans := m.FindAll([]byte("a@b c@d"))
	require.Len(t, spans, 2)
	require.Len(t, spans[0].Groups, 3)
	assert.Equal(t, "a@b", spans[0].Groups[0])
	assert.Equal(t, "a", spans[0].Groups[1])
	assert.Equal(t, "b", spans[0].Groups[2])
	assert.Equal(t, "word", spans[0].GroupNames[1])
}

func TestMatcher_LiteralEmptyFindYieldsNoSpans(t *testing.T) {
	t.Parallel()

	m, err := compileMatcher("", plan.PatternLiteral, ExactCase)
	require.NoError(t, err)
	assert.Empty(t, m.FindAll([]byte("anything")))
}

func TestCompileMatcher_InvalidRegex(t *testing.T) {
	t.Parallel()

	_, err := compileMatcher("(unterminated", plan.PatternRegex, ExactCase)
	assert.Error(t, err)
}

func TestMatcher_RegexCaretMatchesEveryLine(t *testing.T) {
	t.Parallel()

	m, err := compileMatcher("^", plan.PatternRegex, ExactCase)
	require.NoError(t, err)

	spans := m.FindAll([]byte("one\ntwo\nthree"))
	require.Len(t, spans, 3)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 4, spans[1].Start)
	assert.Equal(t, 8, spans[2].Start)
}
