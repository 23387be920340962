package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/hunkscope/domain"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleScoreDefect handles the score_defect tool
func (h *HandlerSet) HandleScoreDefect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, errResult := h.parseRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	defect, ok := args["defect"].(string)
	if !ok || defect == "" {
		return mcp.NewToolResultError("defect parameter is required and must be a string"), nil
	}
	req.Divergence.DefectIDs = []string{defect}

	useCase, err := h.deps.BuildDivergenceUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create scorer: %v", err)), nil
	}
	result, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	if len(result.Divergence.Skipped) > 0 {
		s := result.Divergence.Skipped[0]
		return mcp.NewToolResultError(fmt.Sprintf("defect %s skipped: %s", s.DefectID, s.Reason)), nil
	}
	if len(result.Divergence.Results) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("defect %s produced no result", defect)), nil
	}

	res := result.Divergence.Results[0]
	responseData := map[string]interface{}{
		"defect_id":  res.Defect.ID,
		"policy":     result.Divergence.Policy,
		"hunk_count": len(res.Defect.Hunks),
		"warnings":   res.Warnings,
	}
	if res.Divergence != nil {
		responseData["divergence_score"] = res.Divergence.Score
		responseData["pairs"] = res.Divergence.Pairs
	}
	if stringArg(args, "output_mode", "summary") == "full" {
		responseData["hunks"] = res.Defect.Hunks
	}

	return jsonResult(responseData)
}

// HandleClassifyDataset handles the classify_dataset tool
func (h *HandlerSet) HandleClassifyDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, errResult := h.parseRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	useCase, err := h.deps.BuildProximityUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create classifier: %v", err)), nil
	}
	result, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}

	prox := result.Proximity
	counts := make(map[domain.ProximityClass]int, len(domain.ProximityClasses()))
	for _, c := range domain.ProximityClasses() {
		counts[c] = 0
	}
	for _, d := range prox.Defects {
		counts[d.Class]++
	}

	defects := prox.Defects
	if maxResults := intArg(args, "max_results", 0); maxResults > 0 && len(defects) > maxResults {
		defects = defects[:maxResults]
	}

	return jsonResult(map[string]interface{}{
		"cutoff":               prox.Cutoff,
		"cutoff_derived":       prox.CutoffDerived,
		"median_package_depth": prox.MedianDepth,
		"total_defects":        len(prox.Defects),
		"class_counts":         counts,
		"defects":              defects,
	})
}

// HandleAnalyzeDataset handles the analyze_dataset tool
func (h *HandlerSet) HandleAnalyzeDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, req, errResult := h.parseRequest(request)
	if errResult != nil {
		return errResult, nil
	}
	req.Output.Summary = true

	useCase, err := h.deps.BuildAnalyzeUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create analyzer: %v", err)), nil
	}
	result, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	var responseData interface{}
	switch stringArg(args, "output_mode", "summary") {
	case "full":
		responseData = result
	default:
		responseData = map[string]interface{}{
			"policy":         result.Divergence.Policy,
			"scored_defects": len(result.Divergence.Divergences()),
			"skipped":        result.Divergence.Skipped,
			"cutoff":         result.Proximity.Cutoff,
			"cutoff_derived": result.Proximity.CutoffDerived,
			"summary":        result.Summary,
		}
	}
	return jsonResult(responseData)
}

// parseRequest validates the shared arguments and builds a request from the
// configuration defaults. Output is discarded; handlers marshal the response.
func (h *HandlerSet) parseRequest(request mcp.CallToolRequest) (map[string]interface{}, domain.AnalyzeRequest, *mcp.CallToolResult) {
	var req domain.AnalyzeRequest

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, req, mcp.NewToolResultError("invalid arguments format")
	}

	dataset, ok := args["dataset"].(string)
	if !ok || dataset == "" {
		return nil, req, mcp.NewToolResultError("dataset parameter is required and must be a string")
	}
	workDir, ok := args["work_dir"].(string)
	if !ok || workDir == "" {
		return nil, req, mcp.NewToolResultError("work_dir parameter is required and must be a string")
	}
	for _, p := range []string{dataset, workDir} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, req, mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", p))
		}
	}

	cfg := h.deps.Config()
	req = cfg.AnalyzeRequest(io.Discard)
	req.Output = domain.OutputOptions{Format: domain.OutputFormatJSON, Writer: io.Discard}
	// a shared checkpoint could mix runs over different datasets
	req.Divergence.CheckpointPath = ""
	req.Divergence.DatasetPath = dataset
	req.Divergence.WorkDir = workDir
	req.Divergence.PatchDir = stringArg(args, "patch_dir", req.Divergence.PatchDir)
	req.Divergence.Policy = domain.DivergencePolicy(stringArg(args, "policy", string(req.Divergence.Policy)))
	req.Cutoff = intArg(args, "cutoff", req.Cutoff)

	if raw, ok := args["defects"].([]interface{}); ok {
		req.Divergence.DefectIDs = nil
		for _, d := range raw {
			if id, ok := d.(string); ok {
				req.Divergence.DefectIDs = append(req.Divergence.DefectIDs, id)
			}
		}
	}

	if err := req.Validate(); err != nil {
		return nil, req, mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return args, req, nil
}

func stringArg(args map[string]interface{}, key, defaultVal string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

// intArg reads a number; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string, defaultVal int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
