package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/hunkscope/app"
	"github.com/ludo-technologies/hunkscope/service"
)

// AnalyzeCommand scores and classifies the defects of a dataset
type AnalyzeCommand struct {
	sweepCommand
}

// NewAnalyzeCommand creates a new analyze command
func NewAnalyzeCommand() *AnalyzeCommand {
	return &AnalyzeCommand{}
}

// CreateCobraCommand creates the cobra command for the full analysis
func (c *AnalyzeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score divergence and classify proximity of every defect",
		Long: `Run a divergence sweep over the dataset, then classify every scored
defect by the proximity of its hunks.

Writes the divergence, pairwise and proximity tables, and with --summary the
mean and standard deviation of divergence per proximity class.

Examples:
  # Score a dataset and print the tables
  hunkscope analyze -d defects.json -w checkouts/

  # Use patch text and write one CSV file per table
  hunkscope analyze -d defects.json -w checkouts/ --patch-dir patches/ -f csv -o reports/

  # Resume an interrupted sweep
  hunkscope analyze -d defects.json -w checkouts/ --checkpoint run.jsonl`,
		Args: cobra.NoArgs,
		RunE: c.runAnalyze,
	}

	c.addFlags(cmd, scoringFlags|proximityFlags|summaryFlags)
	return cmd
}

func (c *AnalyzeCommand) runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logCloser, err := c.prepare(cmd)
	if err != nil {
		printCategorizedError(cmd, err)
		return err
	}
	defer logCloser.Close()

	divergenceService, pm := newDivergenceService(cmd, "Scoring defects")
	defer pm.Close()

	useCase, err := app.NewAnalyzeUseCaseBuilder().
		WithDivergenceService(divergenceService).
		WithProximityService(service.NewProximityService()).
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

// NewAnalyzeCmd creates and returns the analyze cobra command
func NewAnalyzeCmd() *cobra.Command {
	return NewAnalyzeCommand().CreateCobraCommand()
}
