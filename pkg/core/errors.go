// Package core provides the main Evermem client and companion configuration.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested document or blob was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProfileExists indicates that a profile with the same ID already exists.
	ErrProfileExists = errors.New("profile already exists")

	// ErrProfileNotFound indicates that the requested profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrCorruptDocument indicates that a stored document could not be decoded.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrStoreOperation indicates that a blob store operation failed.
	ErrStoreOperation = errors.New("store operation failed")

	// ErrLLMOperation indicates that an LLM operation failed.
	ErrLLMOperation = errors.New("llm operation failed")

	// ErrNoSpeech indicates that no speech was recognized in an audio clip.
	// This is a distinct outcome rather than a transport failure.
	ErrNoSpeech = errors.New("no speech recognized")
)

// CompanionError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
//
// Example:
//
//	err := &CompanionError{
//	    Op:  "CreateProfile",
//	    Err: ErrProfileExists,
//	}
//	// Error() returns: "evermem: CreateProfile: profile already exists"
type CompanionError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "evermem: <Op>: <Err>"
func (e *CompanionError) Error() string {
	return fmt.Sprintf("evermem: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with CompanionError.
func (e *CompanionError) Unwrap() error {
	return e.Err
}

// NewCompanionError creates a new CompanionError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewCompanionError("CreateProfile", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "CreateProfile", "Ask", "UploadMemory")
//   - err: The underlying error to wrap
//
// Returns a CompanionError, or nil if err is nil.
func NewCompanionError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CompanionError{
		Op:  op,
		Err: err,
	}
}
