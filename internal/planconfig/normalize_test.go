package planconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/plan"
)

func minimalDoc() *Document {
	return &Document{
		Inputs:     []InputDoc{{Kind: "path", Path: "a.txt"}},
		Operations: []OperationDoc{{Type: "replace", Find: "foo", With: "bar"}},
	}
}

func TestNormalize_DefaultsApplyWhenDocOmitsScalars(t *testing.T) {
	t.Parallel()

	p, sources, err := Normalize(minimalDoc(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, plan.PatternLiteral, p.Mode)
	assert.Equal(t, plan.CaseSensitive, p.Case)
	assert.Equal(t, plan.TransactionFile, p.Transaction)
	assert.Equal(t, SourceDefault, sources["mode"])
}

func TestNormalize_DocOverridesDefaults(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Mode = "regex"
	doc.Operations[0].Find = `fo+`

	p, sources, err := Normalize(doc, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, plan.PatternRegex, p.Mode)
	assert.Equal(t, SourcePlanDoc, sources["mode"])
}

func TestNormalize_CLIFlagsOverrideDoc(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Mode = "regex"
	doc.Operations[0].Find = `fo+`

	p, sources, err := Normalize(doc, nil, map[string]any{"mode": "literal"})
	require.NoError(t, err)
	assert.Equal(t, plan.PatternLiteral, p.Mode)
	assert.Equal(t, SourceCLIFlag, sources["mode"])
}

func TestNormalize_RejectsExpandUnderLiteralMode(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Operations[0].Expand = true

	_, _, err := Normalize(doc, nil, nil)
	assert.Error(t, err)
}

func TestNormalize_RejectsInvalidRegex(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Mode = "regex"
	doc.Operations[0].Find = "(unterminated"

	_, _, err := Normalize(doc, nil, nil)
	assert.Error(t, err)
}

func TestNormalize_RejectsNegativeExpectExactCount(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	n := -1
	doc.Policy = &PolicyDoc{ExpectExactCount: &n}

	_, _, err := Normalize(doc, nil, nil)
	assert.Error(t, err)
}

func TestNormalize_RejectsRangeEndBeforeStart(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Range = &RangeDoc{Start: 10, End: 5}

	_, _, err := Normalize(doc, nil, nil)
	assert.Error(t, err)
}

func TestNormalize_ParsesFixedModeAndMaxFileSize(t *testing.T) {
	t.Parallel()

	doc := minimalDoc()
	doc.Permissions = "fixed"
	doc.FixedMode = "0644"
	doc.MaxFileSize = "2MB"

	p, _, err := Normalize(doc, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0o644, p.FixedPermBits)
	assert.EqualValues(t, 2*1024*1024, p.MaxFileSize)
}

func TestNormalize_RejectsEmptyInputsOrOperations(t *testing.T) {
	t.Parallel()

	doc := &Document{}
	_, _, err := Normalize(doc, nil, nil)
	assert.Error(t, err)
}
