package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable covers connection, authentication, and query failures
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnknownSource is returned for ids that are not configured
	ErrUnknownSource = errors.New("unknown source")
	// ErrMalformedObservation marks an offset value that cannot be used
	ErrMalformedObservation = errors.New("malformed observation")
)

// SourceError tags a fetch failure with the source it came from.
// It matches both ErrSourceUnavailable and the underlying cause.
type SourceError struct {
	SourceID string
	Op       string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s: %v", e.SourceID, e.Op, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

func sourceErr(sourceID, op string, err error) error {
	return &SourceError{SourceID: sourceID, Op: op, Err: err}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedObservation, fmt.Sprintf(format, args...))
}
