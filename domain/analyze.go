package domain

import (
	"context"
	"io"
	"time"
)

// AnalyzeRequest runs a divergence sweep and classifies the same defects
type AnalyzeRequest struct {
	Divergence DivergenceRequest

	// Cutoff overrides the corpus-derived proximity cutoff when not CutoffAuto
	Cutoff int

	Output OutputOptions
}

// Validate checks the request
func (r *AnalyzeRequest) Validate() error {
	if err := r.Divergence.Validate(); err != nil {
		return err
	}
	if r.Cutoff < CutoffAuto {
		return NewValidationError("cutoff must be non-negative (or -1 to derive it)")
	}
	if r.Output.Format != "" && !r.Output.Format.IsValid() {
		return NewUnsupportedFormatError(string(r.Output.Format))
	}
	return nil
}

// ClassSummary aggregates the divergence of the defects of one class
type ClassSummary struct {
	Class            ProximityClass `json:"proximity_class" yaml:"proximity_class"`
	Defects          int            `json:"defects" yaml:"defects"`
	MeanDivergence   float64        `json:"mean_divergence" yaml:"mean_divergence"`
	StdDevDivergence float64        `json:"stddev_divergence" yaml:"stddev_divergence"`
}

// AnalyzeResponse represents the combined divergence and proximity results
type AnalyzeResponse struct {
	Divergence *DivergenceResponse `json:"divergence" yaml:"divergence"`
	Proximity  *ProximityResponse  `json:"proximity" yaml:"proximity"`
	Summary    []ClassSummary      `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Metadata
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Duration    int64     `json:"duration_ms" yaml:"duration_ms"`
	Version     string    `json:"version" yaml:"version"`
}

// AnalyzeOutputFormatter renders results as tables in one format
type AnalyzeOutputFormatter interface {
	// Tables converts whatever parts of the response are present into tables
	Tables(response *AnalyzeResponse, includeSummary bool) []Table

	// Write writes every table to the writer in the given format
	Write(response *AnalyzeResponse, format OutputFormat, includeSummary bool, writer io.Writer) error

	// WriteDir writes one file per table into dir and returns the paths
	WriteDir(response *AnalyzeResponse, format OutputFormat, includeSummary bool, dir string) ([]string, error)
}

// DatasetLoader reads a dataset file
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*Dataset, error)
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue dereferences b, or returns defaultVal when b is nil
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}
