package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFeedNotFound indicates no feed document has been written yet.
	ErrFeedNotFound = errors.New("feed document not found")

	// ErrInvalidConfig indicates the run configuration is malformed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown source type.
	ErrUnsupportedType = errors.New("unsupported source type")

	// ErrNoSources indicates no enabled sources are configured.
	ErrNoSources = errors.New("no sources configured")

	// ErrAllSourcesFailed indicates every source fetch failed in one run.
	// Distinct from a legitimately empty feed: a run that ends here must
	// not overwrite a previously published document with an empty one.
	ErrAllSourcesFailed = errors.New("all sources failed")
)

// FetchError reports that a single source was unreachable or returned
// material the fetcher could not use. The aggregator recovers from it:
// the source contributes zero records and the run continues.
type FetchError struct {
	// Source is the configured name of the failing source.
	Source string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError reports a raw event that is missing a required field
// or carries a malformed one. The record is dropped and counted; it
// never enters the pipeline.
type ValidationError struct {
	// Source is the name of the source that produced the record.
	Source string

	// Field is the offending field.
	Field string

	// Reason describes why the field was rejected.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event from %s: %s %s", e.Source, e.Field, e.Reason)
}
