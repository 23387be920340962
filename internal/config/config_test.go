package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, "mean", c.Divergence.Policy)
	assert.Equal(t, 0.0, c.Divergence.SameFileGamma)
	assert.Equal(t, 2.0, c.Divergence.CrossFileGamma)
	assert.Equal(t, 50, c.Divergence.PackageScanLines)
	assert.Equal(t, domain.CutoffAuto, c.Proximity.Cutoff)
	assert.Equal(t, "text", c.Output.Format)
	assert.Equal(t, DefaultLogFilename, c.Log.Filename)
	assert.True(t, c.Log.Compress)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad policy", func(c *Config) { c.Divergence.Policy = "median" }, "divergence.policy"},
		{"negative same gamma", func(c *Config) { c.Divergence.SameFileGamma = -1 }, "same_file_gamma"},
		{"negative cross gamma", func(c *Config) { c.Divergence.CrossFileGamma = -0.5 }, "cross_file_gamma"},
		{"no scan lines", func(c *Config) { c.Divergence.PackageScanLines = 0 }, "package_scan_lines"},
		{"cutoff below auto", func(c *Config) { c.Proximity.Cutoff = -2 }, "proximity.cutoff"},
		{"bad format", func(c *Config) { c.Output.Format = "html" }, "output.format"},
		{"negative workers", func(c *Config) { c.Performance.MaxWorkers = -1 }, "max_workers"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative rotation", func(c *Config) { c.Log.MaxAge = -1 }, "log.max_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	c := DefaultConfig()
	c.Divergence.Policy = "log-scaled"
	c.Proximity.Cutoff = 0
	c.Output.Format = "csv"
	assert.NoError(t, c.Validate())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"INFO", slog.LevelInfo, true},
		{"debug", slog.LevelDebug, true},
		{" warning ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"-4", slog.LevelDebug, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLogLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestLoadConfig_TomlWalkUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`
[input]
dataset = "data/defects.json"
work_dir = "/srv/checkouts"
defects = ["Lang_1", "Lang_2"]

[divergence]
policy = "log-scaled"
cross_file_gamma = 1.5

[proximity]
cutoff = 2

[output]
summary = true
`), 0o644))

	c, err := LoadConfig("", nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "data", "defects.json"), c.Input.Dataset)
	assert.Equal(t, "/srv/checkouts", c.Input.WorkDir)
	assert.Equal(t, "", c.Input.PatchDir)
	assert.Equal(t, []string{"Lang_1", "Lang_2"}, c.Input.Defects)
	assert.Equal(t, "log-scaled", c.Divergence.Policy)
	assert.Equal(t, 1.5, c.Divergence.CrossFileGamma)
	// unset keys keep their defaults
	assert.Equal(t, 0.0, c.Divergence.SameFileGamma)
	assert.Equal(t, 50, c.Divergence.PackageScanLines)
	assert.Equal(t, 2, c.Proximity.Cutoff)
	assert.True(t, c.Output.Summary)
	assert.Equal(t, "text", c.Output.Format)
	assert.Equal(t, filepath.Join(root, DefaultLogFilename), c.Log.Filename)
}

func TestLoadConfig_ExplicitYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunkscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  dataset: defects.json
  patch_dir: patches
divergence:
  same_file_gamma: 0.5
output:
  format: json
  checkpoint: state/run.jsonl
performance:
  max_workers: 4
`), 0o644))

	c, err := LoadConfig(path, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "defects.json"), c.Input.Dataset)
	assert.Equal(t, filepath.Join(dir, "patches"), c.Input.PatchDir)
	assert.Equal(t, 0.5, c.Divergence.SameFileGamma)
	assert.Equal(t, 2.0, c.Divergence.CrossFileGamma)
	assert.Equal(t, "json", c.Output.Format)
	assert.Equal(t, filepath.Join(dir, "state", "run.jsonl"), c.Output.Checkpoint)
	assert.Equal(t, 4, c.Performance.MaxWorkers)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"), "")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.MkdirAll(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, ConfigFileName), []byte("[divergence\npolicy = "), 0o644))
	_, err = LoadConfig("", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")

	invalid := filepath.Join(dir, "invalid")
	require.NoError(t, os.MkdirAll(invalid, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(invalid, ConfigFileName), []byte("[divergence]\npolicy = \"median\"\n"), 0o644))
	_, err = LoadConfig("", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConfig_Requests(t *testing.T) {
	c := DefaultConfig()
	c.Input.Dataset = "d.json"
	c.Input.WorkDir = "work"
	c.Input.Defects = []string{"Math_7"}
	c.Divergence.Policy = "log-scaled"
	c.Performance.MaxWorkers = 3
	c.Output.Checkpoint = "cp.jsonl"
	c.Output.Format = "csv"
	c.Output.Directory = "out"
	c.Output.Summary = true
	c.Proximity.Cutoff = 1

	var buf bytes.Buffer
	req := c.AnalyzeRequest(&buf)
	require.NoError(t, req.Validate())

	assert.Equal(t, "d.json", req.Divergence.DatasetPath)
	assert.Equal(t, "work", req.Divergence.WorkDir)
	assert.Equal(t, []string{"Math_7"}, req.Divergence.DefectIDs)
	assert.Equal(t, domain.DivergencePolicyLogScaled, req.Divergence.Policy)
	assert.Equal(t, 2.0, req.Divergence.CrossFileGamma)
	assert.Equal(t, 3, req.Divergence.MaxWorkers)
	assert.Equal(t, "cp.jsonl", req.Divergence.CheckpointPath)
	assert.False(t, req.Divergence.LocalizeOnly)
	assert.Equal(t, 1, req.Cutoff)
	assert.Equal(t, domain.OutputFormatCSV, req.Output.Format)
	assert.Equal(t, "out", req.Output.Directory)
	assert.True(t, req.Output.Summary)
	assert.Same(t, &buf, req.Output.Writer)
}
