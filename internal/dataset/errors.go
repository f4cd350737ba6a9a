package dataset

import (
	"errors"
	"fmt"
)

// Error taxonomy for load and view operations. Every failure is retriable by
// re-invoking the operation; none is fatal to the process.
var (
	// ErrMissingInput: one or both sources were not supplied.
	ErrMissingInput = errors.New("missing input")
	// ErrParseFailure: a source's content is malformed. Returned wrapped in a
	// *ParseError that names the source.
	ErrParseFailure = errors.New("parse failure")
	// ErrEmptyMerge: both sources yielded zero records.
	ErrEmptyMerge = errors.New("nothing to analyze: both sources are empty")
	// ErrNotLoaded: a view or export was requested before any successful load.
	ErrNotLoaded = errors.New("no dataset loaded")
	// ErrLoadInProgress: another load is still running.
	ErrLoadInProgress = errors.New("a load is already in progress")
)

// ParseError reports the first malformed row of a source. It matches
// ErrParseFailure under errors.Is.
type ParseError struct {
	Source  string // source name, e.g. "train.csv"
	Line    int    // 1-based line of the first error, 0 if unknown
	Message string // first error message
	Count   int    // total rows that failed
	Err     error  // underlying reader error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %s", e.Source, e.Message)
	if e.Line > 0 {
		msg = fmt.Sprintf("parse %s: line %d: %s", e.Source, e.Line, e.Message)
	}
	if e.Count > 1 {
		msg += fmt.Sprintf(" (and %d more)", e.Count-1)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }
