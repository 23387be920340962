package analyzer

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultPackageScanLines is how many leading lines are searched for a
// package declaration
const DefaultPackageScanLines = 50

// layoutSegments are build-layout directories that carry no package meaning
var layoutSegments = map[string]bool{
	"src":       true,
	"main":      true,
	"java":      true,
	"test":      true,
	"resources": true,
}

// ExtractPackage returns the dotted package of a Java file: the first package
// declaration within the first scanLines lines, or, failing that, the
// directory path with build-layout segments removed.
func ExtractPackage(lines []string, filePath string, scanLines int) string {
	if scanLines <= 0 {
		scanLines = DefaultPackageScanLines
	}
	if len(lines) < scanLines {
		scanLines = len(lines)
	}

	for _, line := range lines[:scanLines] {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "package ") {
			continue
		}
		pkg := strings.TrimSpace(strings.TrimPrefix(trimmed, "package "))
		if i := strings.IndexByte(pkg, ';'); i >= 0 {
			pkg = pkg[:i]
		}
		return strings.TrimSpace(pkg)
	}

	return strings.Join(PathPackageSegments(filePath), ".")
}

// PathPackageSegments derives package segments from a file's directory.
// Everything up to and including the first "src" segment is dropped, as are
// the remaining build-layout segments.
func PathPackageSegments(filePath string) []string {
	dir := path.Dir(filepath.ToSlash(filePath))
	if dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(strings.Trim(dir, "/"), "/")
	for i, p := range parts {
		if p == "src" {
			parts = parts[i+1:]
			break
		}
	}

	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || layoutSegments[p] {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

// SplitPackage splits a dotted or slash-delimited package into segments
func SplitPackage(pkg string) []string {
	fields := strings.FieldsFunc(pkg, func(r rune) bool {
		return r == '.' || r == '/'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CommonPrefixLength returns how many leading segments a and b share
func CommonPrefixLength(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// SegmentDistance returns the number of segments on the path from a to b
// through their longest common prefix
func SegmentDistance(a, b []string) int {
	common := CommonPrefixLength(a, b)
	return (len(a) - common) + (len(b) - common)
}
