package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/hunkscope/domain"
)

// categoryPatterns pairs a category with message fragments. Order matters:
// the first category with a matching fragment wins.
type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns initializes the message fallbacks used when an
// error carries no domain code
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"yaml",
			"invalid settings",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"dataset",
			"defect id",
			"file not found",
			"no such file",
			"cannot access",
			"permission denied",
			"work directory",
		}},
		{domain.ErrorCategoryOutput, []string{
			"output",
			"write",
			"cannot create",
			"checkpoint",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"syntax",
			"localiz",
			"divergence",
			"proximity",
		}},
	}
}

// codeCategories maps domain error codes to categories
var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeEmptyLocalization: domain.ErrorCategoryProcessing,
	domain.ErrCodeDegenerateDefect:  domain.ErrorCategoryProcessing,
	domain.ErrCodeNormalizationZero: domain.ErrorCategoryProcessing,
	domain.ErrCodePatchMismatch:     domain.ErrorCategoryProcessing,
}

// Categorize determines the category of an error. Cancellation wins, then
// the domain error code, then message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := domain.ErrorCategoryUnknown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		category = domain.ErrorCategoryTimeout
	} else if c, ok := codeCategories[domain.ErrorCode(err)]; ok {
		category = c
	} else {
		errMsg := strings.ToLower(err.Error())
		for _, cp := range ec.patterns {
			if containsAnyPattern(errMsg, cp.patterns) {
				category = cp.category
				break
			}
		}
	}

	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the dataset file exists and is a JSON object keyed by <Project>_<Number>",
			"Check that --work-dir contains one checkout per defect, named like the defect id",
			"Try: hunkscope divergence --verbose to see which files are missing",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: hunkscope init to generate a valid .hunkscope.toml",
			"Policy must be \"mean\" or \"log-scaled\"; gammas must be non-negative",
		},
		domain.ErrorCategoryTimeout: {
			"Resume the sweep with --checkpoint so finished defects are not recomputed",
			"Restrict the run to some defects with --defect",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output directory and checkpoint file",
			"Use --format text to print to the terminal instead",
		},
		domain.ErrorCategoryProcessing: {
			"Files that do not parse are scored with neutral distances; see the log for details",
			"Run with --verbose for per-hunk localization details",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Check the log file configured under [log]",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to read the dataset or checkouts",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Sweep cancelled or timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while localizing or scoring defects",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
