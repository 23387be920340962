package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/hunkscope/app"
	"github.com/ludo-technologies/hunkscope/service"
)

// DivergenceCommand scores the divergence of every defect
type DivergenceCommand struct {
	sweepCommand
}

// NewDivergenceCommand creates a new divergence command
func NewDivergenceCommand() *DivergenceCommand {
	return &DivergenceCommand{}
}

// CreateCobraCommand creates the cobra command for the divergence sweep
func (c *DivergenceCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "divergence",
		Short: "Score the structural divergence of every defect",
		Long: `Locate every buggy hunk and score each pair of hunks of a defect by
lexical, syntactic and path distance. Writes the divergence table (one score
per defect) and the pairwise table.

Examples:
  hunkscope divergence -d defects.json -w checkouts/
  hunkscope divergence -d defects.json -w checkouts/ --policy log-scaled --defect Lang_1 --defect Math_7`,
		Args: cobra.NoArgs,
		RunE: c.runDivergence,
	}

	c.addFlags(cmd, scoringFlags)
	return cmd
}

func (c *DivergenceCommand) runDivergence(cmd *cobra.Command, args []string) error {
	cfg, logCloser, err := c.prepare(cmd)
	if err != nil {
		printCategorizedError(cmd, err)
		return err
	}
	defer logCloser.Close()

	divergenceService, pm := newDivergenceService(cmd, "Scoring defects")
	defer pm.Close()

	useCase, err := app.NewDivergenceUseCaseBuilder().
		WithService(divergenceService).
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

// NewDivergenceCmd creates and returns the divergence cobra command
func NewDivergenceCmd() *cobra.Command {
	return NewDivergenceCommand().CreateCobraCommand()
}
