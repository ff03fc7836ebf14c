package txn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/plan"
)

func TestManager_FileMode_CommitsImmediately(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p := &plan.Plan{Transaction: plan.TransactionFile, Permissions: plan.PermissionsPreserve}
	m := NewManager(p)

	outcome := &plan.ItemOutcome{
		Kind: plan.OutcomeSuccess, Path: dest, Modified: true,
		TransformedContent: []byte("new"),
	}
	m.Apply(outcome)

	assert.Equal(t, plan.OutcomeSuccess, outcome.Kind)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestManager_AllMode_DefersUntilCommitAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p := &plan.Plan{Transaction: plan.TransactionAll, Permissions: plan.PermissionsPreserve}
	m := NewManager(p)

	outcome := &plan.ItemOutcome{
		Kind: plan.OutcomeSuccess, Path: dest, Modified: true,
		TransformedContent: []byte("new"),
	}
	m.Apply(outcome)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content), "all-mode must not write before CommitAll")

	require.NoError(t, m.CommitAll())
	content, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestManager_AllMode_DiscardAllLeavesTargetsUntouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p := &plan.Plan{Transaction: plan.TransactionAll, Permissions: plan.PermissionsPreserve}
	m := NewManager(p)

	outcome := &plan.ItemOutcome{
		Kind: plan.OutcomeSuccess, Path: dest, Modified: true,
		TransformedContent: []byte("new"),
	}
	m.Apply(outcome)
	require.NoError(t, m.DiscardAll())

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestManager_SkipsVirtualOutcomes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	p := &plan.Plan{Transaction: plan.TransactionFile}
	m := NewManager(p)

	outcome := &plan.ItemOutcome{
		Kind: plan.OutcomeSuccess, Path: "", Modified: true, IsVirtual: true,
		TransformedContent: []byte("new text"),
	}
	m.Apply(outcome)

	assert.Equal(t, plan.OutcomeSuccess, outcome.Kind, "a virtual outcome must never be downgraded by a staging/rename attempt")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "applying a virtual outcome must not stage a temp file into cwd")
}

func TestManager_SkipsUnmodifiedAndDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p := &plan.Plan{Transaction: plan.TransactionFile, Safety: plan.SafetyFlags{DryRun: true}}
	m := NewManager(p)

	outcome := &plan.ItemOutcome{
		Kind: plan.OutcomeSuccess, Path: dest, Modified: true,
		TransformedContent: []byte("new"),
	}
	m.Apply(outcome)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content), "dry run must never write")
}
