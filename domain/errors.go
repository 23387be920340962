package domain

import (
	"errors"
	"fmt"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"

	// Recoverable per-defect conditions. They are reported as warnings and
	// never abort a batch.
	ErrCodeEmptyLocalization = "EMPTY_LOCALIZATION"
	ErrCodeDegenerateDefect  = "DEGENERATE_DEFECT"
	ErrCodeNormalizationZero = "NORMALIZATION_ZERO"
	ErrCodePatchMismatch     = "PATCH_MISMATCH"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a parse error
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse file: %s", file), cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// NewEmptyLocalizationError reports a hunk whose range contains no tree node
func NewEmptyLocalizationError(file string, start, end int) error {
	return NewDomainError(ErrCodeEmptyLocalization,
		fmt.Sprintf("no node starts in lines %d-%d of %s, using the file root", start, end, file), nil)
}

// NewDegenerateDefectError reports a defect with fewer than two hunks
func NewDegenerateDefectError(defectID string, hunks int) error {
	return NewDomainError(ErrCodeDegenerateDefect,
		fmt.Sprintf("defect %s has %d hunk(s), divergence reported as 0", defectID, hunks), nil)
}

// NewNormalizationZeroError reports a zero denominator that was replaced by 1
func NewNormalizationZeroError(what string) error {
	return NewDomainError(ErrCodeNormalizationZero, fmt.Sprintf("%s is 0, using 1", what), nil)
}

// NewPatchMismatchError reports a patch whose hunk count differs from the
// dataset's, so hunk texts are read from the checkout instead
func NewPatchMismatchError(defectID string, patchHunks, datasetHunks int) error {
	return NewDomainError(ErrCodePatchMismatch,
		fmt.Sprintf("patch of %s has %d hunk(s) but the dataset lists %d, using source lines", defectID, patchHunks, datasetHunks), nil)
}

// ErrorCode returns the code of the first DomainError in err's chain, or ""
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err carries the given domain error code
func HasCode(err error, code string) bool {
	return ErrorCode(err) == code
}
