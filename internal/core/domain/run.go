package domain

import "time"

// SourceResult is one source's outcome within a run.
type SourceResult struct {
	// Source is the configured source name.
	Source string

	// Fetched is the number of raw events the source yielded.
	Fetched int

	// Invalid is how many of those failed validation.
	Invalid int

	// Duration is the wall time the fetch took.
	Duration time.Duration

	// Err holds the fetch failure, empty on success.
	Err string
}

// OK reports whether the source fetch succeeded.
func (r SourceResult) OK() bool {
	return r.Err == ""
}

// RunRecord captures the outcome of one aggregation run for the
// run-history store. Failed runs are recorded too.
type RunRecord struct {
	// ID is the run identifier (UUID).
	ID string

	// StartedAt and FinishedAt bound the run, UTC.
	StartedAt  time.Time
	FinishedAt time.Time

	// RawCount is the total number of raw events collected.
	RawCount int

	// InvalidCount is how many raw events failed validation.
	InvalidCount int

	// EventCount is the number of canonical events produced.
	EventCount int

	// Sources holds the per-source outcomes in configuration order.
	Sources []SourceResult

	// Err holds the run-level failure, empty on success.
	Err string
}

// SourcesOK counts the sources that fetched successfully.
func (r RunRecord) SourcesOK() int {
	n := 0
	for _, s := range r.Sources {
		if s.OK() {
			n++
		}
	}
	return n
}

// SourcesFailed counts the sources whose fetch failed.
func (r RunRecord) SourcesFailed() int {
	return len(r.Sources) - r.SourcesOK()
}
