package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ludo-technologies/hunkscope/domain"
)

// DivergenceUseCase runs a divergence sweep and writes the divergence and
// pairwise tables
type DivergenceUseCase struct {
	service   domain.DivergenceService
	formatter domain.AnalyzeOutputFormatter
	output    domain.ReportWriter
}

// NewDivergenceUseCase creates a new divergence use case
func NewDivergenceUseCase(
	service domain.DivergenceService,
	formatter domain.AnalyzeOutputFormatter,
	output domain.ReportWriter,
) *DivergenceUseCase {
	return &DivergenceUseCase{
		service:   service,
		formatter: formatter,
		output:    output,
	}
}

// Execute scores every requested defect and writes the result
func (uc *DivergenceUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	startTime := time.Now()

	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	div, err := uc.service.Analyze(ctx, req.Divergence)
	if err != nil {
		return nil, wrapAnalysisError("divergence sweep failed", err)
	}

	response := &domain.AnalyzeResponse{
		Divergence:  div,
		GeneratedAt: time.Now(),
		Duration:    time.Since(startTime).Milliseconds(),
		Version:     div.Version,
	}
	if err := writeReport(uc.formatter, uc.output, response, req.Output); err != nil {
		return response, err
	}
	return response, nil
}

// validateRequest validates the divergence request
func (uc *DivergenceUseCase) validateRequest(req domain.AnalyzeRequest) error {
	if req.Divergence.LocalizeOnly {
		return fmt.Errorf("a divergence sweep cannot be localize-only")
	}
	if req.Output.Writer == nil && req.Output.Directory == "" {
		return fmt.Errorf("output writer or directory is required")
	}
	return req.Validate()
}

// DivergenceUseCaseBuilder provides a builder pattern for creating DivergenceUseCase
type DivergenceUseCaseBuilder struct {
	service   domain.DivergenceService
	formatter domain.AnalyzeOutputFormatter
	output    domain.ReportWriter
}

// NewDivergenceUseCaseBuilder creates a new builder
func NewDivergenceUseCaseBuilder() *DivergenceUseCaseBuilder {
	return &DivergenceUseCaseBuilder{}
}

// WithService sets the divergence service
func (b *DivergenceUseCaseBuilder) WithService(service domain.DivergenceService) *DivergenceUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *DivergenceUseCaseBuilder) WithFormatter(formatter domain.AnalyzeOutputFormatter) *DivergenceUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *DivergenceUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DivergenceUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the DivergenceUseCase with the configured dependencies
func (b *DivergenceUseCaseBuilder) Build() (*DivergenceUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("divergence service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	return NewDivergenceUseCase(b.service, b.formatter, b.output), nil
}
