package domain

import "errors"

// Hunk is one localized hunk of a defect
type Hunk struct {
	Index     int    `json:"index" yaml:"index"`
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`

	// Package is the declared (or path derived) package name
	Package         string   `json:"package" yaml:"package"`
	PackageSegments []string `json:"package_segments" yaml:"package_segments"`
	// PathSegments is the logical package taken from the file path
	PathSegments []string `json:"path_segments" yaml:"path_segments"`

	Method       string `json:"method" yaml:"method"`
	MethodSource string `json:"method_source" yaml:"method_source"`

	// Localization records how the subtree root was chosen
	// (in-range, fallback-root or unparsed)
	Localization string `json:"localization" yaml:"localization"`
	SubtreeKind  string `json:"subtree_kind,omitempty" yaml:"subtree_kind,omitempty"`

	Text string `json:"-" yaml:"-"`

	Missing     bool `json:"missing,omitempty" yaml:"missing,omitempty"`
	ParseFailed bool `json:"parse_failed,omitempty" yaml:"parse_failed,omitempty"`
}

// PackageDepth returns the number of package segments
func (h Hunk) PackageDepth() int {
	return len(h.PackageSegments)
}

// Defect is a dataset entry with its hunks resolved against the checkout
type Defect struct {
	ID           string `json:"defect_id" yaml:"defect_id"`
	Project      string `json:"project" yaml:"project"`
	Number       int    `json:"number" yaml:"number"`
	CheckoutRoot string `json:"checkout_root" yaml:"checkout_root"`
	Hunks        []Hunk `json:"hunks" yaml:"hunks"`
}

// HunkCount returns the number of hunks
func (d *Defect) HunkCount() int {
	return len(d.Hunks)
}

// Warning is a recoverable condition met while processing a defect
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Hunk    int    `json:"hunk" yaml:"hunk"`
}

// NewWarning converts a domain error into a warning attached to hunk, or to
// the whole defect when hunk is -1
func NewWarning(err error, hunk int) Warning {
	w := Warning{Code: ErrorCode(err), Hunk: hunk}
	var de DomainError
	if errors.As(err, &de) {
		w.Message = de.Message
	} else if err != nil {
		w.Message = err.Error()
	}
	return w
}
