package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/hunkscope/app"
	"github.com/ludo-technologies/hunkscope/service"
)

// ProximityCommand classifies every defect by the proximity of its hunks
type ProximityCommand struct {
	sweepCommand
}

// NewProximityCommand creates a new proximity command
func NewProximityCommand() *ProximityCommand {
	return &ProximityCommand{}
}

// CreateCobraCommand creates the cobra command for proximity classification
func (c *ProximityCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proximity",
		Short: "Classify defects as Nucleus, Cluster, Orbit, Sprawl or Fragment",
		Long: `Locate every buggy hunk and classify each defect by how its hunks spread
over files, packages and the package hierarchy. No pair scoring is done.

The Sprawl cutoff defaults to half the median package depth of all hunks in
the dataset, even when --defect narrows the run; override it with --cutoff.

Examples:
  hunkscope proximity -d defects.json -w checkouts/
  hunkscope proximity -d defects.json -w checkouts/ --cutoff 3 -f csv`,
		Args: cobra.NoArgs,
		RunE: c.runProximity,
	}

	c.addFlags(cmd, proximityFlags)
	return cmd
}

func (c *ProximityCommand) runProximity(cmd *cobra.Command, args []string) error {
	cfg, logCloser, err := c.prepare(cmd)
	if err != nil {
		printCategorizedError(cmd, err)
		return err
	}
	defer logCloser.Close()

	localizer, pm := newDivergenceService(cmd, "Locating hunks")
	defer pm.Close()

	useCase, err := app.NewProximityUseCaseBuilder().
		WithLocalizer(localizer).
		WithService(service.NewProximityService()).
		WithDepthSurvey(service.NewPackageDepthScanner(nil, nil)).
		WithFormatter(service.NewAnalyzeFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	resp, err := useCase.Execute(ctx, cfg.AnalyzeRequest(cmd.OutOrStdout()))
	if err != nil {
		printCategorizedError(cmd, err)
		return err
	}
	printRunSummary(cmd, resp)
	return nil
}

// NewProximityCmd creates and returns the proximity cobra command
func NewProximityCmd() *cobra.Command {
	return NewProximityCommand().CreateCobraCommand()
}
