package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/hunkscope/internal/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hunkscope",
		Short: "Structural divergence and proximity of multi-hunk bug fixes",
		Long: `hunkscope measures how far apart the hunks of a multi-hunk Java bug fix are.

For every defect of a dataset it locates each buggy hunk in its checkout
(file, package, enclosing method) and scores every pair of hunks by lexical,
syntactic and path distance. The pair scores aggregate into one divergence
score per defect. Defects are also classified by how their hunks spread over
the package hierarchy: Nucleus, Cluster, Orbit, Sprawl or Fragment.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: .hunkscope.toml searched upwards)")

	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewDivergenceCmd())
	rootCmd.AddCommand(NewProximityCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
