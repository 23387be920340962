package service

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ludo-technologies/hunkscope/domain"
)

// SummarizeByClass aggregates divergence per proximity class. Every class
// appears once, in class order; a defect without a divergence score or
// without a class is left out. Standard deviation is the sample standard
// deviation and is 0 for classes with fewer than two defects.
func SummarizeByClass(divergence *domain.DivergenceResponse, proximity *domain.ProximityResponse) []domain.ClassSummary {
	scores := make(map[domain.ProximityClass][]float64)
	if divergence != nil && proximity != nil {
		classes := make(map[string]domain.ProximityClass, len(proximity.Defects))
		for _, p := range proximity.Defects {
			classes[p.DefectID] = p.Class
		}
		for _, d := range divergence.Divergences() {
			class, ok := classes[d.DefectID]
			if !ok {
				continue
			}
			scores[class] = append(scores[class], d.Score)
		}
	}

	summaries := make([]domain.ClassSummary, 0, len(domain.ProximityClasses()))
	for _, class := range domain.ProximityClasses() {
		values := scores[class]
		s := domain.ClassSummary{Class: class, Defects: len(values)}
		switch {
		case len(values) >= 2:
			s.MeanDivergence, s.StdDevDivergence = stat.MeanStdDev(values, nil)
		case len(values) == 1:
			s.MeanDivergence = values[0]
		}
		summaries = append(summaries, s)
	}
	return summaries
}
