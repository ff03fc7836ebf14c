package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harvx/rewrite/internal/plan"
)

func TestCompletionNoArgsShowsHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"completion"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(plan.ExitSuccess), code)
	assert.Contains(t, buf.String(), "Generate shell completion scripts")
}

func TestCompletionBash(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "bash"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(plan.ExitSuccess), code)
	assert.NotEmpty(t, buf.String())
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "tcsh"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.NotEqual(t, int(plan.ExitSuccess), code)
}
