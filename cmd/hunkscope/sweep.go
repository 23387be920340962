package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/config"
	"github.com/ludo-technologies/hunkscope/service"
)

// Flag groups registered by a command on top of the input flags
const (
	scoringFlags = 1 << iota
	proximityFlags
	summaryFlags
)

// sweepCommand holds the flags shared by the commands that run a sweep
type sweepCommand struct {
	overrides config.Overrides
}

// addFlags registers the input, output and logging flags plus the given
// groups. Defaults mirror DefaultConfig; only flags the user sets override
// the configuration file.
func (s *sweepCommand) addFlags(cmd *cobra.Command, groups int) {
	d := config.DefaultConfig()
	o := &s.overrides
	f := cmd.Flags()

	f.StringVarP(&o.Dataset, config.FlagDataset, "d", "", "Dataset JSON file")
	f.StringVarP(&o.WorkDir, config.FlagWorkDir, "w", "", "Directory holding one checkout per defect")
	f.StringVar(&o.PatchDir, config.FlagPatchDir, "", "Directory of <defect>.src.patch files")
	f.StringSliceVar(&o.Exclude, config.FlagExclude, nil, "Checkout files to skip when measuring path distances (glob, repeatable)")
	f.StringSliceVar(&o.Defects, config.FlagDefect, nil, "Only process these defect ids (repeatable)")
	f.IntVarP(&o.Workers, config.FlagWorkers, "j", d.Performance.MaxWorkers, "Defects processed in parallel (0 = all CPUs)")

	if groups&scoringFlags != 0 {
		f.StringVar(&o.Policy, config.FlagPolicy, d.Divergence.Policy, "Aggregation policy: mean or log-scaled")
		f.Float64Var(&o.SameFileGamma, config.FlagSameFileGamma, d.Divergence.SameFileGamma, "Syntactic weight for hunks in the same file")
		f.Float64Var(&o.CrossFileGamma, config.FlagCrossFileGamma, d.Divergence.CrossFileGamma, "Syntactic weight for hunks in different files")
		f.IntVar(&o.PackageScanLines, config.FlagPackageScanLines, d.Divergence.PackageScanLines, "Leading lines searched for the package declaration")
		f.StringVar(&o.Checkpoint, config.FlagCheckpoint, "", "JSON Lines file to resume an interrupted sweep from")
	}
	if groups&proximityFlags != 0 {
		f.IntVar(&o.Cutoff, config.FlagCutoff, d.Proximity.Cutoff, "Sprawl cutoff depth (-1 derives it from the corpus)")
	}
	if groups&summaryFlags != 0 {
		f.BoolVar(&o.Summary, config.FlagSummary, false, "Add the divergence summary per proximity class")
	}

	f.StringVarP(&o.Format, config.FlagFormat, "f", d.Output.Format, "Output format: text, json, yaml or csv")
	f.StringVarP(&o.OutputDir, config.FlagOutputDir, "o", "", "Write reports into this directory instead of stdout")
	f.StringVar(&o.LogFile, config.FlagLogFile, d.Log.Filename, "Log file")
	f.StringVar(&o.LogLevel, config.FlagLogLevel, d.Log.Level, "Log level: debug, info, warn or error")
}

// prepare loads the configuration, applies the flags and sets up logging.
// The returned closer flushes the log file.
func (s *sweepCommand) prepare(cmd *cobra.Command) (*config.Config, io.Closer, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, domain.NewConfigError("failed to get working directory", err)
	}
	cfg, err := config.LoadConfig(configPath, cwd)
	if err != nil {
		return nil, nil, domain.NewConfigError("failed to load configuration", err)
	}

	cfg.ApplyOverrides(s.overrides, config.NewFlagTrackerFromFlagSet(cmd.Flags()))
	if err := cfg.Validate(); err != nil {
		return nil, nil, domain.NewConfigError("invalid settings", err)
	}

	return cfg, configureLogger(cfg.Log, verbose), nil
}

// newDivergenceService wires the sweep with a progress bar on stderr
func newDivergenceService(cmd *cobra.Command, description string) (*service.DivergenceServiceImpl, domain.ProgressManager) {
	svc := service.NewDivergenceService(service.NewDatasetLoader(), service.NewFileReader())
	pm := service.NewProgressManager(description)
	pm.SetWriter(cmd.ErrOrStderr())
	svc.SetProgressManager(pm)
	return svc, pm
}

// signalContext is cancelled on interrupt so that a checkpointed sweep
// stops cleanly
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// printRunSummary reports counts on stderr so stdout stays machine readable
func printRunSummary(cmd *cobra.Command, resp *domain.AnalyzeResponse) {
	switch {
	case resp == nil:
	case resp.Divergence != nil:
		div := resp.Divergence
		fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d defects (%d skipped) in %dms\n",
			len(div.Results), len(div.Skipped), resp.Duration)
	case resp.Proximity != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Classified %d defects (cutoff %d) in %dms\n",
			len(resp.Proximity.Defects), resp.Proximity.Cutoff, resp.Duration)
	}
}

// printCategorizedError prints a friendly message and recovery hints
func printCategorizedError(cmd *cobra.Command, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)
	if categorized == nil {
		return
	}

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%s: %s\n", categorized.Category, categorized.Message)
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  • %s\n", suggestion)
	}
}
