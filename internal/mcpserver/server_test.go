package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/planconfig"
)

func TestApplyPlanHandler_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello foo\n"), 0o644))

	doc := planconfig.Document{
		Inputs:     []planconfig.InputDoc{{Kind: "path", Path: target}},
		Operations: []planconfig.OperationDoc{{Type: "replace", Find: "foo", With: "bar"}},
	}

	_, result, err := applyPlanHandler(context.Background(), nil, ApplyPlanArgs{Document: doc})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.EqualValues(t, 1, result.TotalReplacements)
	assert.True(t, result.Committed)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello bar\n", string(content))
}

func TestApplyPlanHandler_EmptyPlanReturnsToolError(t *testing.T) {
	res, _, err := applyPlanHandler(context.Background(), nil, ApplyPlanArgs{Document: planconfig.Document{}})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
}

func TestDesignatorInputMode_StdinText(t *testing.T) {
	doc := planconfig.Document{
		Inputs:     []planconfig.InputDoc{{Kind: "stdin_text"}},
		Operations: []planconfig.OperationDoc{{Type: "delete", Find: "foo"}},
	}
	p, _, err := planconfig.Normalize(&doc, nil, nil)
	require.NoError(t, err)

	mode, paths := designatorInputMode(p)
	assert.Empty(t, paths)
	assert.EqualValues(t, "stdin-text", mode)
}
