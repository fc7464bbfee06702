package document

import (
	"errors"
	"fmt"
)

// ErrNotRegular is returned when a path names a directory or device.
var ErrNotRegular = errors.New("not a regular file")

// PathError records a failed store operation on a path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements error.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
