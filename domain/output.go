package domain

import (
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SupportedOutputFormats lists every format accepted on the command line
func SupportedOutputFormats() []OutputFormat {
	return []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV}
}

// IsValid reports whether f is a supported format
func (f OutputFormat) IsValid() bool {
	for _, s := range SupportedOutputFormats() {
		if f == s {
			return true
		}
	}
	return false
}

// Extension returns the file extension used when writing f to a directory
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatJSON:
		return ".json"
	case OutputFormatYAML:
		return ".yaml"
	case OutputFormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// Table names, also used as base file names in an output directory
const (
	TableDivergence = "divergence"
	TablePairwise   = "pairwise"
	TableProximity  = "proximity"
	TableSummary    = "summary"
)

// OutputOptions controls where and how result tables are written
type OutputOptions struct {
	Format OutputFormat

	// Directory receives one file per table when set; otherwise everything
	// goes to Writer
	Directory string
	Writer    io.Writer

	// Summary adds the per-class summary table
	Summary bool
}

// Table is a rendered result table
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReportWriter abstracts writing reports to a destination (file or writer).
//
// Implementations live in the service layer.
type ReportWriter interface {
	// Write writes formatted content using the provided writeFunc.
	// - If outputPath is non-empty, implementations should create/truncate the file
	//   at that path and pass the file as the writer to writeFunc.
	// - If outputPath is empty, implementations should pass the provided writer to writeFunc.
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}

// ProgressManager manages progress tracking for a batch sweep
type ProgressManager interface {
	// Initialize sets up progress tracking with the maximum value
	Initialize(maxValue int)

	// Start starts the progress bar
	Start()

	// Complete marks the progress as completed
	Complete(success bool)

	// Update updates the progress
	Update(processed, total int)

	// SetWriter sets the output writer for progress bars
	SetWriter(writer io.Writer)

	// IsInteractive returns true if progress bars should be shown
	IsInteractive() bool

	// Close cleans up any resources
	Close()
}

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	ErrorCategoryInput      ErrorCategory = "Input Error"
	ErrorCategoryConfig     ErrorCategory = "Configuration Error"
	ErrorCategoryProcessing ErrorCategory = "Processing Error"
	ErrorCategoryOutput     ErrorCategory = "Output Error"
	ErrorCategoryTimeout    ErrorCategory = "Timeout Error"
	ErrorCategoryUnknown    ErrorCategory = "Unknown Error"
)

// CategorizedError represents an error with category information
type CategorizedError struct {
	Category ErrorCategory
	Message  string
	Original error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Original != nil {
		return e.Original.Error()
	}
	return e.Message
}

// ErrorCategorizer categorizes errors for better reporting
type ErrorCategorizer interface {
	// Categorize determines the category of an error
	Categorize(err error) *CategorizedError

	// GetRecoverySuggestions returns recovery suggestions for an error category
	GetRecoverySuggestions(category ErrorCategory) []string
}
