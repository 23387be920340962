package domain

import (
	"context"
	"fmt"
	"strings"
)

// ProximityClass is the spatial proximity class of a defect
type ProximityClass string

const (
	ProximityNucleus  ProximityClass = "Nucleus"
	ProximityCluster  ProximityClass = "Cluster"
	ProximityOrbit    ProximityClass = "Orbit"
	ProximitySprawl   ProximityClass = "Sprawl"
	ProximityFragment ProximityClass = "Fragment"
)

// ProximityClasses returns the classes from tightest to loosest
func ProximityClasses() []ProximityClass {
	return []ProximityClass{ProximityNucleus, ProximityCluster, ProximityOrbit, ProximitySprawl, ProximityFragment}
}

// ParseProximityClassName matches a class name case-insensitively
func ParseProximityClassName(s string) (ProximityClass, error) {
	for _, c := range ProximityClasses() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown proximity class: %s", s), nil)
}

// CutoffAuto asks for the cutoff to be derived from the corpus
const CutoffAuto = -1

// DefectProximity is the classification of one defect
type DefectProximity struct {
	DefectID  string         `json:"defect_id" yaml:"defect_id"`
	HunkCount int            `json:"hunk_count" yaml:"hunk_count"`
	Class     ProximityClass `json:"proximity_class" yaml:"proximity_class"`
}

// ProximityResponse is the classification of a whole corpus
type ProximityResponse struct {
	// Cutoff is the shared-prefix depth a cross-package defect must exceed
	// to be a Sprawl
	Cutoff int `json:"cutoff" yaml:"cutoff"`
	// CutoffDerived is false when the cutoff was overridden
	CutoffDerived bool    `json:"cutoff_derived" yaml:"cutoff_derived"`
	MedianDepth   float64 `json:"median_package_depth" yaml:"median_package_depth"`

	Defects []DefectProximity `json:"defects" yaml:"defects"`
}

// ClassOf returns the class of a defect and whether it was classified
func (r *ProximityResponse) ClassOf(defectID string) (ProximityClass, bool) {
	if r == nil {
		return "", false
	}
	for _, d := range r.Defects {
		if d.DefectID == defectID {
			return d.Class, true
		}
	}
	return "", false
}

// ProximityService classifies localized defects
type ProximityService interface {
	// Classify assigns a class to every defect. With cutoff CutoffAuto the
	// cutoff is derived from corpusDepths, or from the hunks of the given
	// defects when corpusDepths is nil.
	Classify(defects []Defect, cutoff int, corpusDepths []int) *ProximityResponse
}

// PackageDepthSurvey reports the package depth of every hunk of a dataset
type PackageDepthSurvey interface {
	// PackageDepths covers every record of req's dataset regardless of
	// req.DefectIDs, in dataset order
	PackageDepths(ctx context.Context, req DivergenceRequest) ([]int, error)
}
