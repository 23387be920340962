package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// HunkLocation is a line range of one file, as stored in the dataset
type HunkLocation struct {
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// String formats the location as file:start-end
func (l HunkLocation) String() string {
	return fmt.Sprintf("%s:%d-%d", l.File, l.StartLine, l.EndLine)
}

// DefectRecord is one raw dataset entry
type DefectRecord struct {
	// BuggyHunks maps the hunk index ("0", "1", ...) to its location
	BuggyHunks map[string]HunkLocation `json:"buggy_hunks" yaml:"buggy_hunks"`

	// HunkMapping groups hunk locations by method identity
	HunkMapping map[string][]HunkLocation `json:"hunk_mapping,omitempty" yaml:"hunk_mapping,omitempty"`
}

// OrderedHunks returns the hunks ordered by numeric index. Keys that are not
// integers follow the numeric ones in lexical order.
func (r DefectRecord) OrderedHunks() []HunkLocation {
	keys := make([]string, 0, len(r.BuggyHunks))
	for k := range r.BuggyHunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, erri := strconv.Atoi(keys[i])
		nj, errj := strconv.Atoi(keys[j])
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	hunks := make([]HunkLocation, 0, len(keys))
	for _, k := range keys {
		hunks = append(hunks, r.BuggyHunks[k])
	}
	return hunks
}

// MethodByLocation inverts HunkMapping. When a location is listed under
// several methods the lexically smallest method id wins.
func (r DefectRecord) MethodByLocation() map[HunkLocation]string {
	out := make(map[HunkLocation]string)
	for method, locs := range r.HunkMapping {
		for _, loc := range locs {
			if prev, ok := out[loc]; ok && prev <= method {
				continue
			}
			out[loc] = method
		}
	}
	return out
}

// Dataset is the parsed dataset file keyed by defect id
type Dataset struct {
	Path    string
	Records map[string]DefectRecord
}

// IDs returns the defect ids in sorted order
func (d *Dataset) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Records))
	for id := range d.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of defects
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// DefectID is a parsed "<Project>_<Number>" identifier
type DefectID struct {
	Raw     string
	Project string
	Number  int
}

// String returns the id as written in the dataset
func (id DefectID) String() string {
	if id.Raw != "" {
		return id.Raw
	}
	return fmt.Sprintf("%s_%d", id.Project, id.Number)
}

// CheckoutRoot returns the checkout directory of the defect under workDir
func (id DefectID) CheckoutRoot(workDir string) string {
	return filepath.Join(workDir, id.String())
}

// ParseDefectID splits a "<Project>_<Number>" identifier. The project name
// may itself contain underscores.
func ParseDefectID(s string) (DefectID, error) {
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return DefectID{}, NewInvalidInputError(fmt.Sprintf("malformed defect id %q, expected <Project>_<Number>", s), nil)
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 {
		return DefectID{}, NewInvalidInputError(fmt.Sprintf("malformed defect number in %q", s), err)
	}
	return DefectID{Raw: s, Project: s[:i], Number: n}, nil
}
