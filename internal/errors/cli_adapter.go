package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if tbe, ok := err.(*TestBuildError); ok {
		return a.exitCodeFromCategory(tbe)
	}

	return 1
}

// exitCodeFromCategory maps TestBuildError categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromCategory(err *TestBuildError) int {
	switch err.Category {
	case CategoryExtract:
		return 1 // Build succeeded, no path found
	case CategoryConfig, CategoryValidation:
		return 2 // Configuration / usage error
	case CategoryTool:
		return 3 // Tool not found or spawn failure
	case CategoryBuild:
		// Mirror the underlying tool's exit code when recorded.
		if code, ok := err.Context["exit_code"].(int); ok && code > 0 {
			return code
		}
		return 1
	case CategoryFileSystem, CategoryHistory:
		return 11 // Persistence error
	case CategoryWatch, CategoryInternal:
		return 12 // Runtime error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if tbe, ok := err.(*TestBuildError); ok {
		if a.verbose {
			return tbe.Error()
		}
		switch tbe.Category {
		case CategoryConfig, CategoryValidation:
			return tbe.Message
		default:
			return fmt.Sprintf("%s: %s", tbe.Category, tbe.Message)
		}
	}

	return fmt.Sprintf("Error: %v", err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)

	if a.verbose {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(exitCode)
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if tbe, ok := err.(*TestBuildError); ok {
		level := slog.LevelError
		switch tbe.Severity {
		case SeverityWarning:
			level = slog.LevelWarn
		case SeverityError, SeverityFatal:
			level = slog.LevelError
		}
		a.logger.LogAttrs(nil, level, tbe.Message,
			slog.String("category", string(tbe.Category)))
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
