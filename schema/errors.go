package schema

import (
	"errors"
	"fmt"
)

// BlameErrorKind distinguishes the failure modes of a blame lookup.
type BlameErrorKind int

// Blame error kinds.
const (
	BlameFailed     BlameErrorKind = iota // any failure that makes the run untrustworthy
	BlameNotTracked                       // the path is not part of the tree at the blamed revision
)

// String implements fmt.Stringer.
func (k BlameErrorKind) String() string {
	switch k {
	case BlameNotTracked:
		return "not tracked"
	default:
		return "failed"
	}
}

// BlameError is returned by blame sources for a failed lookup.
type BlameError struct {
	Kind BlameErrorKind
	Path string
	Err  error
}

// NewNotTrackedError reports that path is absent from version control.
func NewNotTrackedError(path string) *BlameError {
	return &BlameError{Kind: BlameNotTracked, Path: path}
}

// NewBlameFailure wraps err as a fatal blame failure for path.
func NewBlameFailure(path string, err error) *BlameError {
	return &BlameError{Kind: BlameFailed, Path: path, Err: err}
}

func (e *BlameError) Error() string {
	if e.Kind == BlameNotTracked {
		return fmt.Sprintf("blame %s: path is not tracked", e.Path)
	}
	return fmt.Sprintf("blame %s: %v", e.Path, e.Err)
}

func (e *BlameError) Unwrap() error { return e.Err }

// IsNotTracked reports whether err is a blame lookup for an untracked path.
func IsNotTracked(err error) bool {
	var be *BlameError
	return errors.As(err, &be) && be.Kind == BlameNotTracked
}

// SourceError is returned when a coverage report cannot be read or parsed.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("coverage source: %v", e.Err)
	}
	return fmt.Sprintf("coverage source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
