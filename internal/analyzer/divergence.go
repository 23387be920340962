package analyzer

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Policy selects how pair scores are aggregated into one defect score. A run
// uses exactly one policy.
type Policy string

const (
	// PolicyMean averages normalized pair scores with the sequence ratio as
	// lexical similarity and linear syntactic normalization. Scores lie in
	// [0, 1].
	PolicyMean Policy = "mean"
	// PolicyLogScaled multiplies the mean by log(n), uses smoothed BLEU as
	// lexical similarity and log-compressed syntactic normalization.
	PolicyLogScaled Policy = "log-scaled"
)

// ParsePolicy converts a configuration string into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyMean:
		return PolicyMean, nil
	case PolicyLogScaled, "log_scaled", "logscaled":
		return PolicyLogScaled, nil
	default:
		return "", fmt.Errorf("unknown divergence policy %q (expected %q or %q)", s, PolicyMean, PolicyLogScaled)
	}
}

// DivergenceConfig configures a DivergenceScorer
type DivergenceConfig struct {
	Policy         Policy
	SameFileGamma  float64
	CrossFileGamma float64
}

// DefaultDivergenceConfig returns the mean policy with the standard weights
func DefaultDivergenceConfig() DivergenceConfig {
	return DivergenceConfig{
		Policy:         PolicyMean,
		SameFileGamma:  DefaultSameFileGamma,
		CrossFileGamma: DefaultCrossFileGamma,
	}
}

// PairScore is the scored result for hunks at positions I < J of a defect
type PairScore struct {
	I, J int
	PairDistances
}

// DivergenceResult is the aggregated score of one defect
type DivergenceResult struct {
	HunkCount int
	Score     float64
	Pairs     []PairScore
	Policy    Policy
}

// DivergenceScorer scores defects under one policy
type DivergenceScorer struct {
	policy  Policy
	metrics *DistanceMetrics
}

// NewDivergenceScorer creates a scorer for the configured policy
func NewDivergenceScorer(cfg DivergenceConfig) *DivergenceScorer {
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyMean
	}

	var metrics *DistanceMetrics
	switch policy {
	case PolicyLogScaled:
		metrics = NewDistanceMetrics(NewSentenceBLEU(), ScaleLog, cfg.SameFileGamma, cfg.CrossFileGamma)
	default:
		metrics = NewDistanceMetrics(NewSequenceRatio(), ScaleLinear, cfg.SameFileGamma, cfg.CrossFileGamma)
	}

	return &DivergenceScorer{policy: policy, metrics: metrics}
}

// Policy returns the scorer's aggregation policy
func (s *DivergenceScorer) Policy() Policy {
	return s.policy
}

// Metrics returns the pair distance calculator
func (s *DivergenceScorer) Metrics() *DistanceMetrics {
	return s.metrics
}

// Score computes every unordered pair of hunks and aggregates them. Defects
// with fewer than two hunks score 0 and have no pairs.
func (s *DivergenceScorer) Score(hunks []*Hunk, maxPathDistance int) *DivergenceResult {
	n := len(hunks)
	result := &DivergenceResult{HunkCount: n, Policy: s.policy}
	if n < 2 {
		return result
	}

	result.Pairs = make([]PairScore, 0, n*(n-1)/2)
	normalized := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := s.metrics.Pair(hunks[i], hunks[j], maxPathDistance)
			result.Pairs = append(result.Pairs, PairScore{I: i, J: j, PairDistances: d})
			normalized = append(normalized, d.Normalized)
		}
	}

	mean := stat.Mean(normalized, nil)
	switch s.policy {
	case PolicyLogScaled:
		result.Score = math.Log(float64(n)) * mean
	default:
		result.Score = clamp01(mean)
	}
	return result
}
