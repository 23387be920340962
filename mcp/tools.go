package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all hunkscope MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: score_defect - divergence of a single defect
	s.AddTool(mcp.NewTool("score_defect",
		mcp.WithDescription("Score the structural divergence of one multi-hunk defect: lexical, syntactic and path distance of every pair of hunks"),
		withInputParams(),
		mcp.WithString("defect",
			mcp.Required(),
			mcp.Description("Defect id, <Project>_<Number> (e.g. Lang_1)")),
		mcp.WithString("policy",
			mcp.Enum("mean", "log-scaled"),
			mcp.Description("Aggregation policy (default: from configuration, mean)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary returns the score and pairs; full adds the localized hunks (default: summary)")),
	), h.HandleScoreDefect)

	// Tool 2: classify_dataset - proximity classes
	s.AddTool(mcp.NewTool("classify_dataset",
		mcp.WithDescription("Classify every defect of a dataset as Nucleus, Cluster, Orbit, Sprawl or Fragment by where its hunks lie in the package hierarchy"),
		withInputParams(),
		withDefectsParam(),
		mcp.WithNumber("cutoff",
			mcp.Description("Sprawl cutoff depth; -1 derives it from the corpus (default: -1)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of defects listed; 0 = all (default: 0)")),
	), h.HandleClassifyDataset)

	// Tool 3: analyze_dataset - divergence per proximity class
	s.AddTool(mcp.NewTool("analyze_dataset",
		mcp.WithDescription("Score and classify every defect of a dataset and summarize divergence per proximity class"),
		withInputParams(),
		withDefectsParam(),
		mcp.WithString("policy",
			mcp.Enum("mean", "log-scaled"),
			mcp.Description("Aggregation policy (default: from configuration, mean)")),
		mcp.WithNumber("cutoff",
			mcp.Description("Sprawl cutoff depth; -1 derives it from the corpus (default: -1)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary returns the class summary; full returns every table (default: summary)")),
	), h.HandleAnalyzeDataset)
}

// withInputParams adds the dataset location parameters shared by every tool
func withInputParams() mcp.ToolOption {
	return func(t *mcp.Tool) {
		for _, opt := range []mcp.ToolOption{
			mcp.WithString("dataset",
				mcp.Required(),
				mcp.Description("Path to the dataset JSON file")),
			mcp.WithString("work_dir",
				mcp.Required(),
				mcp.Description("Directory holding one checkout per defect, named like the defect id")),
			mcp.WithString("patch_dir",
				mcp.Description("Directory of <defect>.src.patch files used for hunk text")),
		} {
			opt(t)
		}
	}
}

func withDefectsParam() mcp.ToolOption {
	return mcp.WithArray("defects",
		mcp.WithStringItems(),
		mcp.Description("Only process these defect ids (default: all)"))
}
