package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/service"
)

// ProximityUseCase localizes every requested defect and classifies it
type ProximityUseCase struct {
	localizer domain.DivergenceService
	service   domain.ProximityService
	depths    domain.PackageDepthSurvey
	formatter domain.AnalyzeOutputFormatter
	output    domain.ReportWriter
}

// NewProximityUseCase creates a new proximity use case. Localization runs
// through the divergence service in localize-only mode; depths surveys the
// whole dataset when only some defects are classified.
func NewProximityUseCase(
	localizer domain.DivergenceService,
	service domain.ProximityService,
	depths domain.PackageDepthSurvey,
	formatter domain.AnalyzeOutputFormatter,
	output domain.ReportWriter,
) *ProximityUseCase {
	return &ProximityUseCase{
		localizer: localizer,
		service:   service,
		depths:    depths,
		formatter: formatter,
		output:    output,
	}
}

// Execute classifies the requested defects and writes the proximity table.
// The cutoff is derived from the package depths of the whole dataset unless
// req.Cutoff overrides it.
func (uc *ProximityUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	startTime := time.Now()

	if req.Output.Writer == nil && req.Output.Directory == "" {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("output writer or directory is required"))
	}
	if err := req.Validate(); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	sweep := req.Divergence
	sweep.LocalizeOnly = true
	localized, err := uc.localizer.Analyze(ctx, sweep)
	if err != nil {
		return nil, wrapAnalysisError("localization sweep failed", err)
	}
	for _, s := range localized.Skipped {
		slog.Warn("Defect not classified", "defect", s.DefectID, "reason", s.Reason)
	}
	depths, err := corpusDepths(ctx, uc.depths, req)
	if err != nil {
		return nil, err
	}

	response := &domain.AnalyzeResponse{
		Proximity:   uc.service.Classify(localizedDefects(localized), req.Cutoff, depths),
		GeneratedAt: time.Now(),
		Duration:    time.Since(startTime).Milliseconds(),
		Version:     localized.Version,
	}
	if err := writeReport(uc.formatter, uc.output, response, req.Output); err != nil {
		return response, err
	}
	return response, nil
}

// ProximityUseCaseBuilder provides a builder pattern for creating ProximityUseCase
type ProximityUseCaseBuilder struct {
	localizer domain.DivergenceService
	service   domain.ProximityService
	depths    domain.PackageDepthSurvey
	formatter domain.AnalyzeOutputFormatter
	output    domain.ReportWriter
}

// NewProximityUseCaseBuilder creates a new builder
func NewProximityUseCaseBuilder() *ProximityUseCaseBuilder {
	return &ProximityUseCaseBuilder{}
}

// WithLocalizer sets the service used for the localize-only sweep
func (b *ProximityUseCaseBuilder) WithLocalizer(localizer domain.DivergenceService) *ProximityUseCaseBuilder {
	b.localizer = localizer
	return b
}

// WithService sets the proximity service
func (b *ProximityUseCaseBuilder) WithService(service domain.ProximityService) *ProximityUseCaseBuilder {
	b.service = service
	return b
}

// WithDepthSurvey sets the whole-dataset package depth survey
func (b *ProximityUseCaseBuilder) WithDepthSurvey(depths domain.PackageDepthSurvey) *ProximityUseCaseBuilder {
	b.depths = depths
	return b
}

// WithFormatter sets the output formatter
func (b *ProximityUseCaseBuilder) WithFormatter(formatter domain.AnalyzeOutputFormatter) *ProximityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *ProximityUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *ProximityUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the ProximityUseCase with the configured dependencies
func (b *ProximityUseCaseBuilder) Build() (*ProximityUseCase, error) {
	if b.localizer == nil {
		return nil, fmt.Errorf("localization service is required")
	}
	if b.service == nil {
		return nil, fmt.Errorf("proximity service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	if b.depths == nil {
		b.depths = service.NewPackageDepthScanner(nil, nil)
	}
	return NewProximityUseCase(b.localizer, b.service, b.depths, b.formatter, b.output), nil
}
