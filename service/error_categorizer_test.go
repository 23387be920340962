package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludo-technologies/hunkscope/domain"
)

func TestErrorCategorizer_Categorize(t *testing.T) {
	ec := NewErrorCategorizer()

	tests := []struct {
		name string
		err  error
		want domain.ErrorCategory
	}{
		{"cancelled", fmt.Errorf("sweep: %w", context.Canceled), domain.ErrorCategoryTimeout},
		{"deadline", context.DeadlineExceeded, domain.ErrorCategoryTimeout},
		{"missing file", domain.NewFileNotFoundError("d.json", nil), domain.ErrorCategoryInput},
		{"config code", domain.NewConfigError("bad", nil), domain.ErrorCategoryConfig},
		{"format code", domain.NewUnsupportedFormatError("xml"), domain.ErrorCategoryOutput},
		{"wrapped parse code", fmt.Errorf("x: %w", domain.NewParseError("A.java", nil)), domain.ErrorCategoryProcessing},
		{"message pattern", errors.New("cannot load dataset"), domain.ErrorCategoryInput},
		{"toml message", errors.New("toml: line 3: expected '='"), domain.ErrorCategoryConfig},
		{"unknown", errors.New("boom"), domain.ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ec.Categorize(tt.err)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.err, got.Original)
		})
	}

	assert.Nil(t, ec.Categorize(nil))
	assert.Equal(t, "boom", ec.Categorize(errors.New("boom")).Message)
}

func TestErrorCategorizer_Suggestions(t *testing.T) {
	ec := NewErrorCategorizer()
	for _, c := range []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryUnknown,
	} {
		assert.NotEmpty(t, ec.GetRecoverySuggestions(c), c)
	}
	assert.Equal(t, []string{"Check the error message for more details"}, ec.GetRecoverySuggestions("other"))
}
