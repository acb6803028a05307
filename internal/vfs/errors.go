package vfs

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a path is not part of the tree.
var ErrNotFound = errors.New("entry not found")

// Error wraps a filesystem failure with the operation and path that caused it.
type Error struct {
	Op   string // Operation that failed (e.g., "readdir", "stat")
	Path string // Affected path
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Operation names used in Error.
const (
	OpResolve = "resolve" // Making a path absolute
	OpReadDir = "readdir" // Listing a directory
	OpStat    = "stat"    // Reading a file size
	OpLookup  = "lookup"  // Finding an entry in the tree
)

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}
