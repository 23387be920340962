package analyzer

import (
	"math"

	"github.com/ludo-technologies/hunkscope/internal/parser"
)

// Default pair weights: crossing a file boundary weighs the path term twice
// as much as the syntactic term
const (
	DefaultSameFileGamma  = 0.0
	DefaultCrossFileGamma = 2.0
)

// Hunk is one contiguous edited region prepared for scoring
type Hunk struct {
	// ID is the hunk's identifier within its defect
	ID   int
	File string
	Text string

	// Root is the smallest subtree enclosing the hunk, nil when the file is
	// missing or did not parse
	Root *parser.Node
	// Index is the annotation of the hunk's file tree, shared by every hunk
	// of that file
	Index *TreeIndex

	// PathSegments is the logical package derived from the file path, used
	// for path distance
	PathSegments []string
	// PackageSegments is the declared package, used for proximity
	PackageSegments []string
	Method          string
}

// SameFile reports whether both hunks edit the same file
func (h *Hunk) SameFile(other *Hunk) bool {
	return h.File == other.File
}

// SyntacticScale selects how a raw tree distance is normalized by the
// diameter
type SyntacticScale int

const (
	// ScaleLinear divides the raw distance by the diameter
	ScaleLinear SyntacticScale = iota
	// ScaleLog divides log1p of the raw distance by log1p of the diameter
	ScaleLog
)

// PairDistances holds the three component distances of one hunk pair and
// the combined scores
type PairDistances struct {
	Lexical   float64
	Syntactic float64
	Path      float64
	Gamma     float64
	// Raw is D_lex * (D_ast + gamma * D_dir)
	Raw float64
	// Normalized is Raw / (1 + gamma), in [0, 1]
	Normalized float64
}

// DistanceMetrics computes pair distances under one fixed configuration
type DistanceMetrics struct {
	lexical        LexicalSimilarity
	scale          SyntacticScale
	sameFileGamma  float64
	crossFileGamma float64
}

// NewDistanceMetrics creates a metrics calculator. A nil similarity selects
// the sequence ratio; negative weights fall back to the defaults.
func NewDistanceMetrics(lexical LexicalSimilarity, scale SyntacticScale, sameFileGamma, crossFileGamma float64) *DistanceMetrics {
	if lexical == nil {
		lexical = NewSequenceRatio()
	}
	if sameFileGamma < 0 {
		sameFileGamma = DefaultSameFileGamma
	}
	if crossFileGamma < 0 {
		crossFileGamma = DefaultCrossFileGamma
	}
	return &DistanceMetrics{
		lexical:        lexical,
		scale:          scale,
		sameFileGamma:  sameFileGamma,
		crossFileGamma: crossFileGamma,
	}
}

// LexicalDistance returns 1 - similarity of the two hunks' text
func (m *DistanceMetrics) LexicalDistance(a, b *Hunk) float64 {
	return clamp01(1 - m.lexical.Similarity(a.Text, b.Text))
}

// SyntacticDistance returns the normalized tree distance between the hunks'
// subtree roots. Hunks in different files are maximally distant.
func (m *DistanceMetrics) SyntacticDistance(a, b *Hunk) float64 {
	if !a.SameFile(b) {
		return 1.0
	}

	idx := a.Index
	if idx == nil {
		idx = b.Index
	}
	raw := float64(idx.Distance(a.Root, b.Root))
	diameter := float64(idx.Diameter())
	if diameter <= 0 {
		diameter = 1
	}

	switch m.scale {
	case ScaleLog:
		return clamp01(math.Log1p(raw) / math.Log1p(diameter))
	default:
		return clamp01(raw / diameter)
	}
}

// PathDistance returns the package segment distance of the hunks divided by
// the repository maximum. Hunks in the same file have distance 0.
func (m *DistanceMetrics) PathDistance(a, b *Hunk, maxPathDistance int) float64 {
	if a.SameFile(b) {
		return 0.0
	}
	if maxPathDistance <= 0 {
		maxPathDistance = 1
	}
	d := SegmentDistance(a.PathSegments, b.PathSegments)
	return clamp01(float64(d) / float64(maxPathDistance))
}

// Gamma returns the path weight for the pair
func (m *DistanceMetrics) Gamma(a, b *Hunk) float64 {
	if a.SameFile(b) {
		return m.sameFileGamma
	}
	return m.crossFileGamma
}

// Pair computes every distance of one hunk pair
func (m *DistanceMetrics) Pair(a, b *Hunk, maxPathDistance int) PairDistances {
	d := PairDistances{
		Lexical:   m.LexicalDistance(a, b),
		Syntactic: m.SyntacticDistance(a, b),
		Path:      m.PathDistance(a, b, maxPathDistance),
		Gamma:     m.Gamma(a, b),
	}
	d.Raw = d.Lexical * (d.Syntactic + d.Gamma*d.Path)
	d.Normalized = clamp01(d.Raw / (1 + d.Gamma))
	return d
}
