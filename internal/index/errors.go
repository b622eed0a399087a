package index

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by GetContext when no chunk matches the
	// identifier.
	ErrNotFound = errors.New("no chunk matches identifier")
	// ErrInvalidFilter is returned by Search for an unsupported language or
	// kind filter value, before any query runs.
	ErrInvalidFilter = errors.New("invalid filter value")
	// ErrIndexInProgress is returned when an indexing pass is already
	// running for this workspace.
	ErrIndexInProgress = errors.New("an indexing pass is already in progress")
)

// FileError kinds.
const (
	ErrKindRead  = "read"
	ErrKindParse = "parse"
	ErrKindEmbed = "embed"
	ErrKindStore = "store"
)

// FileError records a per-file failure during an indexing pass. Failures are
// isolated to the offending file and aggregated on the result; the run itself
// always completes.
type FileError struct {
	Path string
	Kind string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }
