package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/ludo-technologies/hunkscope/domain"
)

// PatchSuffix is appended to a defect id to name its patch file
const PatchSuffix = ".src.patch"

// PatchHunk is the changed text of one @@ block of a patch
type PatchHunk struct {
	File string
	// Plus and Minus hold the added and removed lines without their markers.
	// Defect patches are written from fixed to buggy, so Plus is the buggy
	// side.
	Plus  []string
	Minus []string
}

// Text joins the buggy and fixed lines into the hunk text used for lexical
// comparison
func (h PatchHunk) Text() string {
	lines := make([]string, 0, len(h.Plus)+len(h.Minus))
	lines = append(lines, h.Plus...)
	lines = append(lines, h.Minus...)
	return strings.Join(lines, "\n")
}

// PatchReader loads per-defect unified diffs
type PatchReader struct {
	dir string
}

// NewPatchReader creates a reader for patches stored in dir. An empty dir
// disables patch lookup.
func NewPatchReader(dir string) *PatchReader {
	return &PatchReader{dir: dir}
}

// PatchPath returns the patch file of a defect
func (r *PatchReader) PatchPath(defectID string) string {
	return filepath.Join(r.dir, defectID+PatchSuffix)
}

// Read returns the hunks of the defect's patch in order. It returns nil and
// no error when patches are disabled or the defect has no patch file.
func (r *PatchReader) Read(defectID string) ([]PatchHunk, error) {
	if r == nil || r.dir == "" {
		return nil, nil
	}
	path := r.PatchPath(defectID)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	hunks, err := ParsePatch(content)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	return hunks, nil
}

// ParsePatch splits a multi-file unified diff into hunks in file order
func ParsePatch(content []byte) ([]PatchHunk, error) {
	files, err := diff.ParseMultiFileDiff(content)
	if err != nil {
		return nil, fmt.Errorf("invalid unified diff: %w", err)
	}

	var hunks []PatchHunk
	for _, fd := range files {
		name := strings.TrimPrefix(fd.NewName, "b/")
		if name == "" || name == "/dev/null" {
			name = strings.TrimPrefix(fd.OrigName, "a/")
		}
		for _, h := range fd.Hunks {
			ph := PatchHunk{File: name}
			for _, line := range bytes.Split(h.Body, []byte("\n")) {
				if len(line) == 0 {
					continue
				}
				text := strings.TrimSuffix(string(line[1:]), "\r")
				switch line[0] {
				case '+':
					ph.Plus = append(ph.Plus, text)
				case '-':
					ph.Minus = append(ph.Minus, text)
				}
			}
			hunks = append(hunks, ph)
		}
	}
	return hunks, nil
}
