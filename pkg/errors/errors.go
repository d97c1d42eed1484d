// Package errors defines the error taxonomy for the budget ledger service.
//
// Every error surfaced by the ingestion pipeline is a *LedgerError carrying a
// category, a stable code, optional context values and a suggestion for the
// operator. Categories map to process exit codes so the CLI can report
// failures consistently.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem they originate from.
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryIngest        ErrorCategory = "ingest"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound      ErrorCode = "file_not_found"
	CodeFilePermission    ErrorCode = "file_permission"
	CodeFileUnreadable    ErrorCode = "file_unreadable"
	CodeDirectoryNotFound ErrorCode = "directory_not_found"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"
	CodeEmptyFile     ErrorCode = "empty_file"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Ingest errors
	CodeAccountSkipped ErrorCode = "account_skipped"
	CodeIngestFailed   ErrorCode = "ingest_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// Context carries structured details about where an error occurred.
type Context map[string]interface{}

// LedgerError is the error type used throughout the service.
type LedgerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// GetExitCode maps the error category to a process exit code.
func (e *LedgerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryIngest, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a key/value pair to the error.
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches an operator-facing remediation hint.
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a LedgerError with a captured stack trace.
func New(category ErrorCategory, code ErrorCode, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error as a LedgerError.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError creates a file-related error for the given path.
func FileError(code ErrorCode, path string, err error) *LedgerError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check that the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied reading file: %s", path)
		suggestion = "check file permissions and ensure read access"
	case CodeFileUnreadable:
		message = fmt.Sprintf("file could not be read: %s", path)
		suggestion = "verify the file is a readable CSV export"
	case CodeDirectoryNotFound:
		message = fmt.Sprintf("directory does not exist: %s", path)
		suggestion = "create the directory or point the scan at the right location"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := wrapOrNew(err, CategoryFile, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("path", path)
}

// ParseError creates a parsing error located at a file, line and column.
func ParseError(code ErrorCode, file string, line int, column, value string, err error) *LedgerError {
	var message, suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check that the export is a well-formed CSV"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing column '%s' in %s", column, file)
		suggestion = "verify the export contains the expected headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "fix or remove the invalid entry"
	case CodeEmptyFile:
		message = fmt.Sprintf("file %s contains no records", file)
		suggestion = "confirm the export was downloaded completely"
	default:
		message = fmt.Sprintf("parse error in %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	result := wrapOrNew(err, CategoryParse, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a field-level validation error.
func ValidationError(code ErrorCode, field string, value interface{}, err error) *LedgerError {
	var message, suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "amounts must be decimal numbers, optionally currency formatted"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use a recognizable date format such as YYYY-MM-DD or MM/DD/YYYY"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	result := wrapOrNew(err, CategoryValidation, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error.
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *LedgerError {
	var message, suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	result := wrapOrNew(err, CategoryConfiguration, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// IngestError creates an ingestion-related error for an account.
func IngestError(code ErrorCode, account string, err error) *LedgerError {
	var message, suggestion string

	switch code {
	case CodeAccountSkipped:
		message = fmt.Sprintf("account '%s' was skipped", account)
		suggestion = "inspect the account folder and its newest CSV export"
	case CodeIngestFailed:
		message = fmt.Sprintf("ingestion failed for account '%s'", account)
		suggestion = "check the log for the underlying read or parse failure"
	default:
		message = fmt.Sprintf("ingest error for account '%s'", account)
		suggestion = "review the account folder contents"
	}

	result := wrapOrNew(err, CategoryIngest, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("account", account)
}

// InternalError creates an unexpected internal error.
func InternalError(code ErrorCode, operation string, err error) *LedgerError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	result := wrapOrNew(err, CategoryInternal, code, message)
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

func wrapOrNew(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// ErrorSummary aggregates multiple errors from a scan or parse run.
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*LedgerError        `json:"errors"`
}

// NewErrorSummary builds an ErrorSummary from the given errors.
func NewErrorSummary(errs []*LedgerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}
	return summary
}

// Error returns a formatted message for the summary.
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}
	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory reports whether the summary contains errors of the category.
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	return es.ByCategory[category] > 0
}

// HasCode reports whether the summary contains errors with the code.
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// IsLedgerError reports whether err is a *LedgerError.
func IsLedgerError(err error) bool {
	_, ok := err.(*LedgerError)
	return ok
}

// AsLedgerError extracts a *LedgerError from an error chain.
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps err unless it already is a LedgerError.
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}
	if ledgerErr, ok := AsLedgerError(err); ok {
		return ledgerErr
	}
	return Wrap(err, category, code, message)
}
