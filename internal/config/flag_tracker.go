package config

import (
	"github.com/spf13/pflag"
)

// FlagTracker tracks which command line flags were explicitly set
type FlagTracker struct {
	setFlags map[string]bool
}

// NewFlagTracker creates an empty tracker
func NewFlagTracker() *FlagTracker {
	return &FlagTracker{setFlags: make(map[string]bool)}
}

// NewFlagTrackerFromFlagSet records every flag of fs the user changed
func NewFlagTrackerFromFlagSet(fs *pflag.FlagSet) *FlagTracker {
	ft := NewFlagTracker()
	if fs == nil {
		return ft
	}
	fs.Visit(func(f *pflag.Flag) {
		ft.Set(f.Name)
	})
	return ft
}

// Set marks a flag as explicitly set
func (ft *FlagTracker) Set(flagName string) {
	ft.setFlags[flagName] = true
}

// WasSet reports whether a flag was explicitly set
func (ft *FlagTracker) WasSet(flagName string) bool {
	if ft == nil {
		return false
	}
	return ft.setFlags[flagName]
}

// Count returns the number of explicitly set flags
func (ft *FlagTracker) Count() int {
	return len(ft.setFlags)
}

// Merge returns override when flagName was explicitly set, otherwise base
func Merge[T any](ft *FlagTracker, base, override T, flagName string) T {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// Flag names shared by the commands and the configuration overrides
const (
	FlagDataset          = "dataset"
	FlagWorkDir          = "work-dir"
	FlagPatchDir         = "patch-dir"
	FlagExclude          = "exclude"
	FlagDefect           = "defect"
	FlagPolicy           = "policy"
	FlagSameFileGamma    = "same-file-gamma"
	FlagCrossFileGamma   = "cross-file-gamma"
	FlagPackageScanLines = "package-scan-lines"
	FlagCutoff           = "cutoff"
	FlagFormat           = "format"
	FlagOutputDir        = "output-dir"
	FlagCheckpoint       = "checkpoint"
	FlagSummary          = "summary"
	FlagWorkers          = "workers"
	FlagLogFile          = "log-file"
	FlagLogLevel         = "log-level"
)

// Overrides carries the command line values that may override the file
type Overrides struct {
	Dataset          string
	WorkDir          string
	PatchDir         string
	Exclude          []string
	Defects          []string
	Policy           string
	SameFileGamma    float64
	CrossFileGamma   float64
	PackageScanLines int
	Cutoff           int
	Format           string
	OutputDir        string
	Checkpoint       string
	Summary          bool
	Workers          int
	LogFile          string
	LogLevel         string
}

// ApplyOverrides copies the explicitly set flags onto the configuration.
// Flags take precedence over the file, the file over the defaults.
func (c *Config) ApplyOverrides(o Overrides, ft *FlagTracker) {
	c.Input.Dataset = Merge(ft, c.Input.Dataset, o.Dataset, FlagDataset)
	c.Input.WorkDir = Merge(ft, c.Input.WorkDir, o.WorkDir, FlagWorkDir)
	c.Input.PatchDir = Merge(ft, c.Input.PatchDir, o.PatchDir, FlagPatchDir)
	c.Input.ExcludePatterns = Merge(ft, c.Input.ExcludePatterns, o.Exclude, FlagExclude)
	c.Input.Defects = Merge(ft, c.Input.Defects, o.Defects, FlagDefect)

	c.Divergence.Policy = Merge(ft, c.Divergence.Policy, o.Policy, FlagPolicy)
	c.Divergence.SameFileGamma = Merge(ft, c.Divergence.SameFileGamma, o.SameFileGamma, FlagSameFileGamma)
	c.Divergence.CrossFileGamma = Merge(ft, c.Divergence.CrossFileGamma, o.CrossFileGamma, FlagCrossFileGamma)
	c.Divergence.PackageScanLines = Merge(ft, c.Divergence.PackageScanLines, o.PackageScanLines, FlagPackageScanLines)

	c.Proximity.Cutoff = Merge(ft, c.Proximity.Cutoff, o.Cutoff, FlagCutoff)

	c.Output.Format = Merge(ft, c.Output.Format, o.Format, FlagFormat)
	c.Output.Directory = Merge(ft, c.Output.Directory, o.OutputDir, FlagOutputDir)
	c.Output.Checkpoint = Merge(ft, c.Output.Checkpoint, o.Checkpoint, FlagCheckpoint)
	c.Output.Summary = Merge(ft, c.Output.Summary, o.Summary, FlagSummary)

	c.Performance.MaxWorkers = Merge(ft, c.Performance.MaxWorkers, o.Workers, FlagWorkers)

	c.Log.Filename = Merge(ft, c.Log.Filename, o.LogFile, FlagLogFile)
	c.Log.Level = Merge(ft, c.Log.Level, o.LogLevel, FlagLogLevel)
}
