package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *TestBuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(reason string, cause error) *TestBuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("reason", reason)
}

func ValidationFailed(field, reason string) *TestBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build tool errors

func ToolInvocationError(cause error) *TestBuildError {
	return Wrap(cause, CategoryTool, SeverityFatal, "build tool invocation failed")
}

func BuildFailed(exitCode int) *TestBuildError {
	return New(CategoryBuild, SeverityError, "test build failed").
		WithContext("exit_code", exitCode)
}

// Extraction errors

func ExtractionError(cause error) *TestBuildError {
	return Wrap(cause, CategoryExtract, SeverityFatal, "binary path extraction failed")
}

func NoBinaryFound() *TestBuildError {
	return New(CategoryExtract, SeverityError, "no test binary path found in build output")
}

// Persistence errors

func StateFileError(operation string, cause error) *TestBuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "settings file operation failed").
		WithContext("operation", operation)
}

func HistoryError(operation string, cause error) *TestBuildError {
	return Wrap(cause, CategoryHistory, SeverityError, "run history operation failed").
		WithContext("operation", operation)
}

// Watch mode errors

func WatchError(cause error) *TestBuildError {
	return Wrap(cause, CategoryWatch, SeverityFatal, "watch mode failed")
}
