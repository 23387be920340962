package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultConfigTOML(t *testing.T) {
	content, err := GenerateDefaultConfigTOML()
	require.NoError(t, err)

	assert.Contains(t, content, "[divergence]")
	assert.Contains(t, content, `policy = "mean"`)
	assert.Contains(t, content, "cross_file_gamma = 2.0")
	assert.Contains(t, content, "cutoff = -1")
	assert.NotContains(t, content, "{{")
}

func TestGenerateDefaultConfigTOML_LoadsAsDefaults(t *testing.T) {
	content, err := GenerateDefaultConfigTOML()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	loaded, err := LoadConfig("", dir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.ResolvePaths(dir)
	assert.Equal(t, want.Divergence, loaded.Divergence)
	assert.Equal(t, want.Proximity, loaded.Proximity)
	assert.Equal(t, want.Performance, loaded.Performance)
	assert.Equal(t, want.Log, loaded.Log)
	assert.Equal(t, want.Output, loaded.Output)
	assert.Empty(t, loaded.Input.Dataset)
	assert.Empty(t, loaded.Input.ExcludePatterns)
	assert.Empty(t, loaded.Input.Defects)
}
