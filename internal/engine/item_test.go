package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/plan"
)

func basePlan(ops ...plan.Operation) *plan.Plan {
	return &plan.Plan{
		Operations:  ops,
		Mode:        plan.PatternLiteral,
		Case:        plan.CaseSensitive,
		Transaction: plan.TransactionFile,
		Symlinks:    plan.SymlinkFollow,
		Binary:      plan.BinarySkip,
		Permissions: plan.PermissionsPreserve,
	}
}

func TestProcessItem_StdinTextReplace(t *testing.T) {
	t.Parallel()

	p := basePlan(plan.Operation{Type: plan.OpReplace, Find: "world", With: "there"})
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemStdinText, Bytes: []byte("hello world")}
	outcome := ProcessItem(item, cp, NewContentCache())

	assert.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	assert.True(t, outcome.Modified)
	assert.EqualValues(t, 1, outcome.Replacements)
	assert.Equal(t, "hello there", string(outcome.TransformedContent))
	assert.True(t, outcome.IsVirtual)
}

func TestProcessItem_PathReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo foo foo\n"), 0o644))

	p := basePlan(plan.Operation{Type: plan.OpReplace, Find: "foo", With: "bar"})
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemPath, AbsPath: path, OriginalSpelling: path}
	outcome := ProcessItem(item, cp, NewContentCache())

	require.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	assert.True(t, outcome.Modified)
	assert.EqualValues(t, 3, outcome.Replacements)
	assert.Equal(t, "bar bar bar\n", string(outcome.TransformedContent))
	assert.True(t, outcome.HasDiff)
	assert.NotEmpty(t, outcome.Diff)
}

func TestProcessItem_NoMatchIsUnmodified(t *testing.T) {
	t.Parallel()

	p := basePlan(plan.Operation{Type: plan.OpReplace, Find: "missing", With: "x"})
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemStdinText, Bytes: []byte("nothing here")}
	outcome := ProcessItem(item, cp, NewContentCache())

	assert.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	assert.False(t, outcome.Modified)
	assert.EqualValues(t, 0, outcome.Replacements)
	assert.Empty(t, outcome.Diff)
}

func TestProcessItem_LineRangeRestrictsMatches(t *testing.T) {
	t.Parallel()

	p := basePlan(plan.Operation{Type: plan.OpReplace, Find: "x", With: "Y"})
	p.Range = &plan.LineRange{Start: 2, End: 2}
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemStdinText, Bytes: []byte("x\nx\nx\n")}
	outcome := ProcessItem(item, cp, NewContentCache())

	assert.EqualValues(t, 1, outcome.Replacements)
	assert.Equal(t, "x\nY\nx\n", string(outcome.TransformedContent))
}

func TestProcessItem_MatchSpanFreshAndStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("aaa bbb ccc"), 0o644))

	p := basePlan(plan.Operation{Type: plan.OpReplace, Find: "bbb", With: "ZZZ"})
	cp, err := Compile(p)
	require.NoError(t, err)

	fresh := plan.InputItem{
		Kind: plan.ItemMatchSpan, AbsPath: path, OriginalSpelling: path,
		ByteOffset: 4, ByteLength: 3,
	}
	outcome := ProcessItem(fresh, cp, NewContentCache())
	require.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "aaa ZZZ ccc", string(outcome.TransformedContent))

	stale := plan.InputItem{
		Kind: plan.ItemMatchSpan, AbsPath: path, OriginalSpelling: path,
		ByteOffset: 0, ByteLength: 3,
	}
	outcome = ProcessItem(stale, cp, NewContentCache())
	assert.Equal(t, plan.OutcomeError, outcome.Kind)
	assert.Equal(t, "E_STALE_SPAN", outcome.Code)
}

func TestProcessItem_DeleteAndInsertOperations(t *testing.T) {
	t.Parallel()

	p := basePlan(
		plan.Operation{Type: plan.OpDelete, Find: "REMOVE "},
		plan.Operation{Type: plan.OpInsertBefore, Find: "target", Text: ">>"},
		plan.Operation{Type: plan.OpInsertAfter, Find: "target", Text: "<<"},
	)
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemStdinText, Bytes: []byte("REMOVE target")}
	outcome := ProcessItem(item, cp, NewContentCache())

	require.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, ">>target<<", string(outcome.TransformedContent))
}

func TestProcessItem_ExpandAbsentGroupIsItemError(t *testing.T) {
	t.Parallel()

	p := basePlan(plan.Operation{
		Type: plan.OpReplace, Find: `(\w+)`, With: "$2", Expand: true,
	})
	p.Mode = plan.PatternRegex
	cp, err := Compile(p)
	require.NoError(t, err)

	item := plan.InputItem{Kind: plan.ItemStdinText, Bytes: []byte("word")}
	outcome := ProcessItem(item, cp, NewContentCache())

	assert.Equal(t, plan.OutcomeError, outcome.Kind)
	assert.Equal(t, "E_EXPAND", outcome.Code)
}
