package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// HunkscopeTomlConfig represents the structure of .hunkscope.toml. Scalars
// are pointers so that an unset key keeps the default.
type HunkscopeTomlConfig struct {
	Input       TomlInputConfig       `toml:"input"`
	Divergence  TomlDivergenceConfig  `toml:"divergence"`
	Proximity   TomlProximityConfig   `toml:"proximity"`
	Output      TomlOutputConfig      `toml:"output"`
	Performance TomlPerformanceConfig `toml:"performance"`
	Log         TomlLogConfig         `toml:"log"`
}

type TomlInputConfig struct {
	Dataset         *string  `toml:"dataset"`
	WorkDir         *string  `toml:"work_dir"`
	PatchDir        *string  `toml:"patch_dir"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Defects         []string `toml:"defects"`
}

type TomlDivergenceConfig struct {
	Policy           *string  `toml:"policy"`
	SameFileGamma    *float64 `toml:"same_file_gamma"`
	CrossFileGamma   *float64 `toml:"cross_file_gamma"`
	PackageScanLines *int     `toml:"package_scan_lines"`
}

type TomlProximityConfig struct {
	Cutoff *int `toml:"cutoff"`
}

type TomlOutputConfig struct {
	Format     *string `toml:"format"`
	Directory  *string `toml:"directory"`
	Checkpoint *string `toml:"checkpoint"`
	Summary    *bool   `toml:"summary"`
}

type TomlPerformanceConfig struct {
	MaxWorkers *int `toml:"max_workers"`
}

type TomlLogConfig struct {
	Filename   *string `toml:"filename"`
	Level      *string `toml:"level"`
	MaxSize    *int    `toml:"max_size"`
	MaxBackups *int    `toml:"max_backups"`
	MaxAge     *int    `toml:"max_age"`
	Compress   *bool   `toml:"compress"`
}

// TomlConfigLoader handles discovery and loading of .hunkscope.toml
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig looks for .hunkscope.toml from startDir upwards and merges it
// over the defaults. It returns the path of the file it read, or "" when
// none was found.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, string, error) {
	if startDir == "" {
		startDir = "."
	}
	configPath, err := l.FindConfigFile(startDir)
	if err != nil {
		return DefaultConfig(), "", nil
	}

	config, err := l.LoadFile(configPath)
	if err != nil {
		return nil, "", err
	}
	return config, configPath, nil
}

// LoadFile reads one TOML file over the defaults
func (l *TomlConfigLoader) LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var tomlConfig HunkscopeTomlConfig
	if err := toml.Unmarshal(data, &tomlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse toml config %s: %w", configPath, err)
	}

	config := DefaultConfig()
	l.merge(config, &tomlConfig)
	return config, nil
}

// FindConfigFile walks up the directory tree to find .hunkscope.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// merge copies every key present in the file onto config
func (l *TomlConfigLoader) merge(config *Config, t *HunkscopeTomlConfig) {
	mergePtr(&config.Input.Dataset, t.Input.Dataset)
	mergePtr(&config.Input.WorkDir, t.Input.WorkDir)
	mergePtr(&config.Input.PatchDir, t.Input.PatchDir)
	if t.Input.ExcludePatterns != nil {
		config.Input.ExcludePatterns = t.Input.ExcludePatterns
	}
	if t.Input.Defects != nil {
		config.Input.Defects = t.Input.Defects
	}

	mergePtr(&config.Divergence.Policy, t.Divergence.Policy)
	mergePtr(&config.Divergence.SameFileGamma, t.Divergence.SameFileGamma)
	mergePtr(&config.Divergence.CrossFileGamma, t.Divergence.CrossFileGamma)
	mergePtr(&config.Divergence.PackageScanLines, t.Divergence.PackageScanLines)

	mergePtr(&config.Proximity.Cutoff, t.Proximity.Cutoff)

	mergePtr(&config.Output.Format, t.Output.Format)
	mergePtr(&config.Output.Directory, t.Output.Directory)
	mergePtr(&config.Output.Checkpoint, t.Output.Checkpoint)
	mergePtr(&config.Output.Summary, t.Output.Summary)

	mergePtr(&config.Performance.MaxWorkers, t.Performance.MaxWorkers)

	mergePtr(&config.Log.Filename, t.Log.Filename)
	mergePtr(&config.Log.Level, t.Log.Level)
	mergePtr(&config.Log.MaxSize, t.Log.MaxSize)
	mergePtr(&config.Log.MaxBackups, t.Log.MaxBackups)
	mergePtr(&config.Log.MaxAge, t.Log.MaxAge)
	mergePtr(&config.Log.Compress, t.Log.Compress)
}

func mergePtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
