package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ProximityClass is the spatial category of a defect's hunks, ordered from
// most to least concentrated
type ProximityClass int

const (
	// Nucleus: one file, one method
	Nucleus ProximityClass = iota
	// Cluster: one file, several methods
	Cluster
	// Orbit: several files, one package
	Orbit
	// Sprawl: several packages sharing a prefix deeper than the cutoff
	Sprawl
	// Fragment: everything else
	Fragment
)

var proximityNames = [...]string{"Nucleus", "Cluster", "Orbit", "Sprawl", "Fragment"}

// AllProximityClasses lists the classes in order
func AllProximityClasses() []ProximityClass {
	return []ProximityClass{Nucleus, Cluster, Orbit, Sprawl, Fragment}
}

// String returns the class name
func (c ProximityClass) String() string {
	if c < Nucleus || c > Fragment {
		return "Unknown"
	}
	return proximityNames[c]
}

// ParseProximityClass converts a class name, case-insensitively
func ParseProximityClass(s string) (ProximityClass, error) {
	for i, name := range proximityNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return ProximityClass(i), nil
		}
	}
	return Fragment, fmt.Errorf("unknown proximity class %q", s)
}

// SameFile reports whether every hunk edits the same file
func SameFile(hunks []*Hunk) bool {
	return allEqual(hunks, func(h *Hunk) string { return h.File })
}

// SameMethod reports whether every hunk resolves to the same method
func SameMethod(hunks []*Hunk) bool {
	return allEqual(hunks, func(h *Hunk) string { return h.Method })
}

// SamePackage reports whether every hunk has the same package segments
func SamePackage(hunks []*Hunk) bool {
	return allEqual(hunks, func(h *Hunk) string { return strings.Join(h.PackageSegments, ".") })
}

func allEqual(hunks []*Hunk, key func(*Hunk) string) bool {
	if len(hunks) == 0 {
		return true
	}
	first := key(hunks[0])
	for _, h := range hunks[1:] {
		if key(h) != first {
			return false
		}
	}
	return true
}

// MinCommonPrefix returns the smallest package common prefix length over all
// hunk pairs, 0 for fewer than two hunks
func MinCommonPrefix(hunks []*Hunk) int {
	if len(hunks) < 2 {
		return 0
	}
	lcp := math.MaxInt
	for i := 0; i < len(hunks); i++ {
		for j := i + 1; j < len(hunks); j++ {
			lcp = min(lcp, CommonPrefixLength(hunks[i].PackageSegments, hunks[j].PackageSegments))
		}
	}
	return lcp
}

// Classify assigns the first matching class: Nucleus, Cluster, Orbit,
// Sprawl (minimum common prefix above cutoff), Fragment.
func Classify(hunks []*Hunk, cutoff int) ProximityClass {
	if SameFile(hunks) {
		if SameMethod(hunks) {
			return Nucleus
		}
		return Cluster
	}
	if SamePackage(hunks) {
		return Orbit
	}
	if MinCommonPrefix(hunks) > cutoff {
		return Sprawl
	}
	return Fragment
}

// Median returns the median of values: the middle element, or the mean of
// the two middle elements for an even count. Returns 0 for no values.
func Median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// Cutoff derives the Sprawl threshold from the package depths of every hunk
// in the corpus: floor(median / 2)
func Cutoff(depths []int) int {
	return int(math.Floor(Median(depths) / 2))
}
