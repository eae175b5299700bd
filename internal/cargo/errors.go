package cargo

// Package-local sentinel errors for build invocation and message extraction.
// User-facing messages stay descriptive via wrapping.

import "errors"

var (
	// ErrToolNotFound indicates the cargo executable was not detected on PATH.
	ErrToolNotFound = errors.New("cargo binary not found")
	// ErrSpawnFailed indicates the cargo process could not be started.
	ErrSpawnFailed = errors.New("cargo spawn failed")
	// ErrMalformedRecord indicates a non-empty output line was not a valid
	// JSON compiler message in structured extraction mode.
	ErrMalformedRecord = errors.New("malformed compiler message record")
)
