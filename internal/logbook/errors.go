package logbook

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an ordinal or date lookup misses. Callers
// usually treat it as an empty result rather than a hard failure.
var ErrNotFound = errors.New("entry not found")

// FormatError reports malformed or semantically incomplete entry text. The
// message names the violated rule so callers can echo it back to the user.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

func formatErr(reason string) error {
	return &FormatError{Reason: reason}
}

// IOFailure wraps a filesystem error with the path the operation failed on.
// The owning entry stays dirty, so a retried commit attempts it again.
type IOFailure struct {
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error {
	return e.Err
}

func ioFailure(path string, err error) error {
	return &IOFailure{Path: path, Err: err}
}
