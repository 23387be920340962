package domain

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// DivergencePolicy names the aggregation policy of a run
type DivergencePolicy string

const (
	DivergencePolicyMean      DivergencePolicy = "mean"
	DivergencePolicyLogScaled DivergencePolicy = "log-scaled"
)

// PairwiseScore holds the distances of hunks I < J of one defect
type PairwiseScore struct {
	I          int     `json:"hunk_i" yaml:"hunk_i"`
	J          int     `json:"hunk_j" yaml:"hunk_j"`
	Lexical    float64 `json:"lexical_distance" yaml:"lexical_distance"`
	Syntactic  float64 `json:"syntactic_distance" yaml:"syntactic_distance"`
	Path       float64 `json:"path_distance" yaml:"path_distance"`
	Gamma      float64 `json:"gamma" yaml:"gamma"`
	Normalized float64 `json:"normalized_pair_score" yaml:"normalized_pair_score"`
}

// DefectDivergence is the divergence of one defect
type DefectDivergence struct {
	DefectID  string           `json:"defect_id" yaml:"defect_id"`
	HunkCount int              `json:"hunk_count" yaml:"hunk_count"`
	Score     float64          `json:"divergence_score" yaml:"divergence_score"`
	Policy    DivergencePolicy `json:"policy" yaml:"policy"`
	Pairs     []PairwiseScore  `json:"pairs" yaml:"pairs"`
}

// DefectResult is everything computed for one defect
type DefectResult struct {
	Defect     Defect            `json:"defect" yaml:"defect"`
	Divergence *DefectDivergence `json:"divergence,omitempty" yaml:"divergence,omitempty"`
	Warnings   []Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Settings   *RunSettings      `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// RunSettings are the request fields a defect result depends on
type RunSettings struct {
	// Localization
	PatchDir         string `json:"patch_dir" yaml:"patch_dir"`
	PackageScanLines int    `json:"package_scan_lines" yaml:"package_scan_lines"`

	// Scoring
	Policy          DivergencePolicy `json:"policy" yaml:"policy"`
	SameFileGamma   float64          `json:"same_file_gamma" yaml:"same_file_gamma"`
	CrossFileGamma  float64          `json:"cross_file_gamma" yaml:"cross_file_gamma"`
	ExcludePatterns []string         `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`
}

// SameLocalization reports whether hunks localized under s and o agree
func (s RunSettings) SameLocalization(o RunSettings) bool {
	return s.PatchDir == o.PatchDir && s.PackageScanLines == o.PackageScanLines
}

// SameScoring reports whether scores computed under s and o agree
func (s RunSettings) SameScoring(o RunSettings) bool {
	return s.SameLocalization(o) &&
		s.Policy == o.Policy &&
		s.SameFileGamma == o.SameFileGamma &&
		s.CrossFileGamma == o.CrossFileGamma &&
		slices.Equal(s.ExcludePatterns, o.ExcludePatterns)
}

// SkippedDefect is a defect that could not be processed
type SkippedDefect struct {
	DefectID string `json:"defect_id" yaml:"defect_id"`
	Reason   string `json:"reason" yaml:"reason"`
}

// DivergenceRequest represents a request for a divergence sweep
type DivergenceRequest struct {
	// Inputs
	DatasetPath string
	WorkDir     string
	PatchDir    string

	// DefectIDs restricts the sweep; empty means every defect
	DefectIDs       []string
	ExcludePatterns []string

	// Scoring
	Policy           DivergencePolicy
	SameFileGamma    float64
	CrossFileGamma   float64
	PackageScanLines int

	// Execution
	MaxWorkers     int
	CheckpointPath string

	// LocalizeOnly resolves hunks without scoring pairs
	LocalizeOnly bool
}

// DefaultDivergenceRequest returns a request with default scoring settings
func DefaultDivergenceRequest() *DivergenceRequest {
	return &DivergenceRequest{
		Policy:           DivergencePolicyMean,
		SameFileGamma:    0,
		CrossFileGamma:   2,
		PackageScanLines: 50,
		ExcludePatterns:  []string{},
	}
}

// Settings returns the fields of the request that results depend on. An
// empty policy is the mean policy.
func (r *DivergenceRequest) Settings() RunSettings {
	policy := r.Policy
	if policy == "" {
		policy = DivergencePolicyMean
	}
	return RunSettings{
		PatchDir:         r.PatchDir,
		PackageScanLines: r.PackageScanLines,
		Policy:           policy,
		SameFileGamma:    r.SameFileGamma,
		CrossFileGamma:   r.CrossFileGamma,
		ExcludePatterns:  r.ExcludePatterns,
	}
}

// Validate checks the request for values no sweep can run with
func (r *DivergenceRequest) Validate() error {
	if r.DatasetPath == "" {
		return NewValidationError("dataset path is required")
	}
	if r.WorkDir == "" {
		return NewValidationError("work directory is required")
	}
	switch r.Policy {
	case "", DivergencePolicyMean, DivergencePolicyLogScaled:
	default:
		return NewValidationError(fmt.Sprintf("unknown divergence policy: %s", r.Policy))
	}
	if r.SameFileGamma < 0 || r.CrossFileGamma < 0 {
		return NewValidationError("gamma weights must be non-negative")
	}
	if r.PackageScanLines < 0 {
		return NewValidationError("package scan lines must be non-negative")
	}
	if r.MaxWorkers < 0 {
		return NewValidationError("max workers must be non-negative")
	}
	return nil
}

// DivergenceResponse is the outcome of a sweep, in dataset order
type DivergenceResponse struct {
	Policy  DivergencePolicy `json:"policy" yaml:"policy"`
	Results []DefectResult   `json:"results" yaml:"results"`
	Skipped []SkippedDefect  `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Metadata
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Duration    int64     `json:"duration_ms" yaml:"duration_ms"`
	Version     string    `json:"version" yaml:"version"`
}

// Divergences returns the scored defects in result order
func (r *DivergenceResponse) Divergences() []DefectDivergence {
	out := make([]DefectDivergence, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Divergence != nil {
			out = append(out, *res.Divergence)
		}
	}
	return out
}

// DivergenceService runs divergence sweeps over a dataset
type DivergenceService interface {
	// Analyze processes every requested defect of the dataset
	Analyze(ctx context.Context, req DivergenceRequest) (*DivergenceResponse, error)
}
