package planconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUserConfig_MissingFileReturnsEmpty(t *testing.T) {
	t.Parallel()

	m, err := LoadUserConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadUserConfig_FlattensNestedTables(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "transaction = \"all\"\n\n[policy]\nrequire_match = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "all", m["transaction"])
	assert.Equal(t, true, m["policy.require_match"])
}
