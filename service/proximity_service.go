package service

import (
	"log/slog"

	"github.com/ludo-technologies/hunkscope/domain"
	"github.com/ludo-technologies/hunkscope/internal/analyzer"
)

// ProximityServiceImpl implements the ProximityService interface
type ProximityServiceImpl struct{}

// NewProximityService creates a new proximity service
func NewProximityService() *ProximityServiceImpl {
	return &ProximityServiceImpl{}
}

// Classify assigns a proximity class to every defect. With cutoff
// domain.CutoffAuto the cutoff is floor(median / 2) of corpusDepths, or of
// the package depth of every hunk of defects when corpusDepths is nil; any
// other value is used as given.
func (s *ProximityServiceImpl) Classify(defects []domain.Defect, cutoff int, corpusDepths []int) *domain.ProximityResponse {
	depths := corpusDepths
	if depths == nil {
		for _, d := range defects {
			for _, h := range d.Hunks {
				depths = append(depths, h.PackageDepth())
			}
		}
	}

	response := &domain.ProximityResponse{
		MedianDepth: analyzer.Median(depths),
		Cutoff:      cutoff,
		Defects:     make([]domain.DefectProximity, 0, len(defects)),
	}
	if cutoff == domain.CutoffAuto {
		response.Cutoff = analyzer.Cutoff(depths)
		response.CutoffDerived = true
	}
	slog.Debug("Proximity cutoff", "median_depth", response.MedianDepth,
		"cutoff", response.Cutoff, "derived", response.CutoffDerived)

	for _, d := range defects {
		class := analyzer.Classify(toAnalyzerHunks(d.Hunks), response.Cutoff)
		response.Defects = append(response.Defects, domain.DefectProximity{
			DefectID:  d.ID,
			HunkCount: len(d.Hunks),
			Class:     domain.ProximityClass(class.String()),
		})
	}
	return response
}

// toAnalyzerHunks keeps the fields the proximity predicates read
func toAnalyzerHunks(hunks []domain.Hunk) []*analyzer.Hunk {
	out := make([]*analyzer.Hunk, len(hunks))
	for i, h := range hunks {
		out[i] = &analyzer.Hunk{
			ID:              h.Index,
			File:            h.File,
			Method:          h.Method,
			PathSegments:    h.PathSegments,
			PackageSegments: h.PackageSegments,
		}
	}
	return out
}
