package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/service"
)

// AnalyzeUseCase scores and classifies the same defects in one sweep and
// summarizes divergence per proximity class
type AnalyzeUseCase struct {
	divergence       domain.DivergenceService
	proximity        domain.ProximityService
	depths           domain.PackageDepthSurvey
	formatter        domain.AnalyzeOutputFormatter
	output           domain.ReportWriter
	errorCategorizer domain.ErrorCategorizer
}

// AnalyzeUseCaseBuilder builds an AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	divergence       domain.DivergenceService
	proximity        domain.ProximityService
	depths           domain.PackageDepthSurvey
	formatter        domain.AnalyzeOutputFormatter
	output           domain.ReportWriter
	errorCategorizer domain.ErrorCategorizer
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithDivergenceService sets the divergence service
func (b *AnalyzeUseCaseBuilder) WithDivergenceService(s domain.DivergenceService) *AnalyzeUseCaseBuilder {
	b.divergence = s
	return b
}

// WithProximityService sets the proximity service
func (b *AnalyzeUseCaseBuilder) WithProximityService(s domain.ProximityService) *AnalyzeUseCaseBuilder {
	b.proximity = s
	return b
}

// WithDepthSurvey sets the whole-dataset package depth survey
func (b *AnalyzeUseCaseBuilder) WithDepthSurvey(d domain.PackageDepthSurvey) *AnalyzeUseCaseBuilder {
	b.depths = d
	return b
}

// WithFormatter sets the formatter
func (b *AnalyzeUseCaseBuilder) WithFormatter(f domain.AnalyzeOutputFormatter) *AnalyzeUseCaseBuilder {
	b.formatter = f
	return b
}

// WithOutputWriter sets the report writer
func (b *AnalyzeUseCaseBuilder) WithOutputWriter(w domain.ReportWriter) *AnalyzeUseCaseBuilder {
	b.output = w
	return b
}

// WithErrorCategorizer sets the error categorizer
func (b *AnalyzeUseCaseBuilder) WithErrorCategorizer(ec domain.ErrorCategorizer) *AnalyzeUseCaseBuilder {
	b.errorCategorizer = ec
	return b
}

// Build creates the AnalyzeUseCase. The divergence service is required;
// the other dependencies default to the service implementations.
func (b *AnalyzeUseCaseBuilder) Build() (*AnalyzeUseCase, error) {
	if b.divergence == nil {
		return nil, fmt.Errorf("divergence service is required")
	}
	if b.proximity == nil {
		b.proximity = service.NewProximityService()
	}
	if b.depths == nil {
		b.depths = service.NewPackageDepthScanner(nil, nil)
	}
	if b.formatter == nil {
		b.formatter = service.NewAnalyzeFormatter()
	}
	if b.output == nil {
		b.output = service.NewFileOutputWriter(nil)
	}
	if b.errorCategorizer == nil {
		b.errorCategorizer = service.NewErrorCategorizer()
	}

	return &AnalyzeUseCase{
		divergence:       b.divergence,
		proximity:        b.proximity,
		depths:           b.depths,
		formatter:        b.formatter,
		output:           b.output,
		errorCategorizer: b.errorCategorizer,
	}, nil
}

// Execute runs the sweep, classifies every scored defect and writes the
// requested tables
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	startTime := time.Now()

	if req.Output.Writer == nil && req.Output.Directory == "" {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("output writer or directory is required"))
	}
	if err := req.Validate(); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}
	sweep := req.Divergence
	sweep.LocalizeOnly = false

	div, err := uc.divergence.Analyze(ctx, sweep)
	if err != nil {
		categorized := uc.errorCategorizer.Categorize(err)
		slog.Error("Divergence sweep failed", "category", categorized.Category, "error", err)
		return nil, wrapAnalysisError("divergence sweep failed", err)
	}
	for _, s := range div.Skipped {
		categorized := uc.errorCategorizer.Categorize(fmt.Errorf("%s", s.Reason))
		slog.Warn("Defect skipped", "defect", s.DefectID, "category", categorized.Category, "reason", s.Reason)
	}

	depths, err := corpusDepths(ctx, uc.depths, req)
	if err != nil {
		return nil, err
	}
	prox := uc.proximity.Classify(localizedDefects(div), req.Cutoff, depths)

	response := &domain.AnalyzeResponse{
		Divergence:  div,
		Proximity:   prox,
		Summary:     service.SummarizeByClass(div, prox),
		GeneratedAt: time.Now(),
		Duration:    time.Since(startTime).Milliseconds(),
		Version:     div.Version,
	}
	slog.Info("Analysis finished", "defects", len(div.Results), "skipped", len(div.Skipped),
		"cutoff", prox.Cutoff, "duration_ms", response.Duration)

	if err := writeReport(uc.formatter, uc.output, response, req.Output); err != nil {
		return response, err
	}
	return response, nil
}
