package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection is returned when an export starts with nothing selected
	ErrNoSelection = errors.New("no objects selected to export animation for")

	// ErrUserCancelled marks a job the user stopped. It is an outcome, not a failure.
	ErrUserCancelled = errors.New("cancelled by user")
)

// PathError is returned when an export destination cannot be written to
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// FileNotFoundError is returned when an import source does not exist
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file doesn't exist: %s", e.Path)
}
