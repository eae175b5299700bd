// Package errors provides a lightweight structured error type
// (TestBuildError) for category-based classification and exit-code mapping
// in the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a testbuild error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External tool integration errors
	CategoryTool  ErrorCategory = "tool"
	CategoryBuild ErrorCategory = "build"

	// Output processing errors
	CategoryExtract    ErrorCategory = "extract"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryWatch    ErrorCategory = "watch"
	CategoryHistory  ErrorCategory = "history"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TestBuildError is a structured error with category, severity, and context
type TestBuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TestBuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *TestBuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TestBuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TestBuildError) WithContext(key string, value any) *TestBuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TestBuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TestBuildError {
	return &TestBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TestBuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TestBuildError {
	return &TestBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if tbe, ok := err.(*TestBuildError); ok {
		return tbe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TestBuildError
func GetCategory(err error) ErrorCategory {
	if tbe, ok := err.(*TestBuildError); ok {
		return tbe.Category
	}
	return CategoryInternal
}
