package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/hunkscope/domain"
)

// ConfigFileName is the dedicated configuration file discovered by walking
// up from the working directory
const ConfigFileName = ".hunkscope.toml"

// Default log settings
const (
	DefaultLogFilename   = ".hunkscope.log"
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28
)

// Config represents the main configuration structure
type Config struct {
	// Input locates the dataset, the checkouts and the patches
	Input InputConfig `mapstructure:"input" yaml:"input" toml:"input"`

	// Divergence holds the scoring parameters
	Divergence DivergenceConfig `mapstructure:"divergence" yaml:"divergence" toml:"divergence"`

	// Proximity holds the classification parameters
	Proximity ProximityConfig `mapstructure:"proximity" yaml:"proximity" toml:"proximity"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" toml:"output"`

	// Performance holds worker settings
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance" toml:"performance"`

	// Log holds the rotating log file settings
	Log LogConfig `mapstructure:"log" yaml:"log" toml:"log"`
}

// InputConfig holds the locations read by a sweep
type InputConfig struct {
	// Dataset is the JSON file of defects and their hunks
	Dataset string `mapstructure:"dataset" yaml:"dataset" toml:"dataset"`

	// WorkDir holds one checkout per defect, named <Project>_<Number>
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir" toml:"work_dir"`

	// PatchDir holds <Project>_<Number>.src.patch files; empty disables
	// patch text
	PatchDir string `mapstructure:"patch_dir" yaml:"patch_dir" toml:"patch_dir"`

	// ExcludePatterns are doublestar patterns skipped when scanning a
	// checkout for the path distance normalizer
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns"`

	// Defects restricts the sweep to these ids; empty means all
	Defects []string `mapstructure:"defects" yaml:"defects" toml:"defects"`
}

// DivergenceConfig holds the scoring parameters
type DivergenceConfig struct {
	// Policy is "mean" or "log-scaled"
	Policy string `mapstructure:"policy" yaml:"policy" toml:"policy"`

	SameFileGamma  float64 `mapstructure:"same_file_gamma" yaml:"same_file_gamma" toml:"same_file_gamma"`
	CrossFileGamma float64 `mapstructure:"cross_file_gamma" yaml:"cross_file_gamma" toml:"cross_file_gamma"`

	// PackageScanLines is how many leading lines are searched for the
	// package declaration
	PackageScanLines int `mapstructure:"package_scan_lines" yaml:"package_scan_lines" toml:"package_scan_lines"`
}

// ProximityConfig holds the classification parameters
type ProximityConfig struct {
	// Cutoff is the Sprawl threshold; -1 derives it from the corpus
	Cutoff int `mapstructure:"cutoff" yaml:"cutoff" toml:"cutoff"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" yaml:"format" toml:"format"`

	// Directory receives the report files; empty prints to stdout
	Directory string `mapstructure:"directory" yaml:"directory" toml:"directory"`

	// Checkpoint is the JSON Lines file used to resume a sweep
	Checkpoint string `mapstructure:"checkpoint" yaml:"checkpoint" toml:"checkpoint"`

	// Summary adds the per-class divergence summary
	Summary bool `mapstructure:"summary" yaml:"summary" toml:"summary"`
}

// PerformanceConfig holds worker settings
type PerformanceConfig struct {
	// MaxWorkers bounds the defects processed in parallel; 0 means GOMAXPROCS
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" toml:"max_workers"`
}

// LogConfig holds the rotating log file settings
type LogConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename" toml:"filename"`
	Level      string `mapstructure:"level" yaml:"level" toml:"level"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size" toml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" toml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age" toml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress" toml:"compress"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	req := domain.DefaultDivergenceRequest()
	return &Config{
		Input: InputConfig{
			ExcludePatterns: []string{},
			Defects:         []string{},
		},
		Divergence: DivergenceConfig{
			Policy:           string(req.Policy),
			SameFileGamma:    req.SameFileGamma,
			CrossFileGamma:   req.CrossFileGamma,
			PackageScanLines: req.PackageScanLines,
		},
		Proximity: ProximityConfig{
			Cutoff: domain.CutoffAuto,
		},
		Output: OutputConfig{
			Format: string(domain.OutputFormatText),
		},
		Log: LogConfig{
			Filename:   DefaultLogFilename,
			Level:      DefaultLogLevel,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration. An explicit configPath is read with viper
// (TOML, YAML or JSON by extension); otherwise .hunkscope.toml is searched
// from startDir upwards. Without either the defaults are returned. Relative
// paths in a file are resolved against the file's directory.
func LoadConfig(configPath, startDir string) (*Config, error) {
	var (
		config *Config
		err    error
	)

	if configPath != "" {
		config, err = loadWithViper(configPath)
	} else {
		config, configPath, err = NewTomlConfigLoader().LoadConfig(startDir)
	}
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		slog.Debug("Loaded configuration", "path", configPath)
		config.ResolvePaths(filepath.Dir(configPath))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// loadWithViper reads an explicit configuration file over the defaults
func loadWithViper(configPath string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// ResolvePaths makes the relative file locations absolute against baseDir
func (c *Config) ResolvePaths(baseDir string) {
	for _, p := range []*string{
		&c.Input.Dataset,
		&c.Input.WorkDir,
		&c.Input.PatchDir,
		&c.Output.Directory,
		&c.Output.Checkpoint,
		&c.Log.Filename,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch domain.DivergencePolicy(c.Divergence.Policy) {
	case domain.DivergencePolicyMean, domain.DivergencePolicyLogScaled:
	default:
		return fmt.Errorf("invalid divergence.policy '%s', must be one of: mean, log-scaled", c.Divergence.Policy)
	}

	if c.Divergence.SameFileGamma < 0 {
		return fmt.Errorf("divergence.same_file_gamma must be >= 0, got %g", c.Divergence.SameFileGamma)
	}
	if c.Divergence.CrossFileGamma < 0 {
		return fmt.Errorf("divergence.cross_file_gamma must be >= 0, got %g", c.Divergence.CrossFileGamma)
	}
	if c.Divergence.PackageScanLines < 1 {
		return fmt.Errorf("divergence.package_scan_lines must be >= 1, got %d", c.Divergence.PackageScanLines)
	}

	if c.Proximity.Cutoff < domain.CutoffAuto {
		return fmt.Errorf("proximity.cutoff must be >= 0, or -1 to derive it, got %d", c.Proximity.Cutoff)
	}

	if !domain.OutputFormat(c.Output.Format).IsValid() {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	if c.Performance.MaxWorkers < 0 {
		return fmt.Errorf("performance.max_workers must be >= 0, got %d", c.Performance.MaxWorkers)
	}

	if _, ok := ParseLogLevel(c.Log.Level); !ok {
		return fmt.Errorf("invalid log.level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return fmt.Errorf("log.max_size, log.max_backups and log.max_age must be >= 0")
	}

	return nil
}

// ParseLogLevel converts a level name or a numeric slog level. An empty
// value is info.
func ParseLogLevel(value string) (slog.Level, bool) {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n), true
	}
	return slog.LevelInfo, false
}

// DivergenceRequest builds the sweep request described by the configuration
func (c *Config) DivergenceRequest() domain.DivergenceRequest {
	return domain.DivergenceRequest{
		DatasetPath:      c.Input.Dataset,
		WorkDir:          c.Input.WorkDir,
		PatchDir:         c.Input.PatchDir,
		DefectIDs:        c.Input.Defects,
		ExcludePatterns:  c.Input.ExcludePatterns,
		Policy:           domain.DivergencePolicy(c.Divergence.Policy),
		SameFileGamma:    c.Divergence.SameFileGamma,
		CrossFileGamma:   c.Divergence.CrossFileGamma,
		PackageScanLines: c.Divergence.PackageScanLines,
		MaxWorkers:       c.Performance.MaxWorkers,
		CheckpointPath:   c.Output.Checkpoint,
	}
}

// AnalyzeRequest builds the full request. Output goes to writer unless an
// output directory is configured.
func (c *Config) AnalyzeRequest(writer io.Writer) domain.AnalyzeRequest {
	return domain.AnalyzeRequest{
		Divergence: c.DivergenceRequest(),
		Cutoff:     c.Proximity.Cutoff,
		Output: domain.OutputOptions{
			Format:    domain.OutputFormat(c.Output.Format),
			Directory: c.Output.Directory,
			Writer:    writer,
			Summary:   c.Output.Summary,
		},
	}
}
