package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/hunkscope/domain"
)

// DatasetLoaderImpl reads the dataset JSON file
type DatasetLoaderImpl struct{}

// NewDatasetLoader creates a new dataset loader
func NewDatasetLoader() *DatasetLoaderImpl {
	return &DatasetLoaderImpl{}
}

// Load parses a dataset file of the form
// {"<Project>_<Number>": {"buggy_hunks": {...}, "hunk_mapping": {...}}}.
// Extra fields of an entry are ignored.
func (l *DatasetLoaderImpl) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return ParseDataset(path, content)
}

// ParseDataset decodes dataset content. Entries with malformed ids or
// without hunks are rejected.
func ParseDataset(path string, content []byte) (*domain.Dataset, error) {
	var records map[string]domain.DefectRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid dataset %s", path), err)
	}
	if records == nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("dataset %s is not a JSON object", path), nil)
	}

	for id, rec := range records {
		if _, err := domain.ParseDefectID(id); err != nil {
			return nil, err
		}
		for key, loc := range rec.BuggyHunks {
			if loc.File == "" {
				return nil, domain.NewInvalidInputError(
					fmt.Sprintf("defect %s hunk %s has no file", id, key), nil)
			}
		}
	}

	return &domain.Dataset{Path: path, Records: records}, nil
}
