package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoMetadata indicates a document carries no provenance.
	ErrNoMetadata = errors.New("no provenance metadata")

	// ErrInvalidMetadata indicates provenance that fails validation.
	ErrInvalidMetadata = errors.New("invalid provenance metadata")
)

// OperationError represents an error that occurred during a command.
type OperationError struct {
	Op     string // Command name (e.g., "stats", "merge")
	Target string // File the command was working on
	Err    error
}

// Error implements error.
func (e *OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Target: target, Err: err}
}
