package domain

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the calendar-date format used throughout the feed.
const DateLayout = "2006-01-02"

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// RawEvent is one event listing as produced by a single source.
// Raw events are ephemeral: created per run and consumed entirely
// within that run's pipeline.
type RawEvent struct {
	// Title is the event title as published by the source.
	Title string

	// Date is the calendar date in ISO form (YYYY-MM-DD).
	Date string

	// Time is the optional clock time (HH:MM). Nil when the source
	// does not state one.
	Time *string

	// Venue names the physical location hosting the event.
	Venue string

	// Location is the town or city. May be empty.
	Location string

	// Description is optional free text about the event.
	Description *string

	// ImageURL is an optional absolute URL of a poster or still.
	ImageURL *string

	// SourceURL is the absolute URL of the originating page.
	SourceURL string

	// SourceName identifies the originating source, normally its domain.
	SourceName string
}

// Validate checks the required-field and format invariants.
// Title, Date and Venue must be present, Date must be a real
// ISO date and Time, when present, a 24h clock time.
func (e RawEvent) Validate() error {
	if e.Title == "" {
		return &ValidationError{Source: e.SourceName, Field: "title", Reason: "empty"}
	}
	if e.Venue == "" {
		return &ValidationError{Source: e.SourceName, Field: "venue", Reason: "empty"}
	}
	if e.Date == "" {
		return &ValidationError{Source: e.SourceName, Field: "date", Reason: "empty"}
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return &ValidationError{Source: e.SourceName, Field: "date", Reason: fmt.Sprintf("not a calendar date: %q", e.Date)}
	}
	if e.Time != nil && !timePattern.MatchString(*e.Time) {
		return &ValidationError{Source: e.SourceName, Field: "time", Reason: fmt.Sprintf("not a clock time: %q", *e.Time)}
	}
	return nil
}

// CanonicalEvent is the deduplicated, merged representation of one
// real-world event, attributed to every source that listed it.
// Canonical events are created at merge time and never mutated.
type CanonicalEvent struct {
	// ID is the deterministic fingerprint of
	// (date, normalised venue, normalised chosen title).
	// Stable across runs given the same canonical inputs.
	ID string `json:"id"`

	// Title is the canonical title chosen by the merge policy.
	Title string `json:"title"`

	// Date is the calendar date in ISO form (YYYY-MM-DD).
	Date string `json:"date"`

	// Time is the optional clock time (HH:MM).
	Time *string `json:"time"`

	// Venue is the chosen raw venue spelling.
	Venue string `json:"venue"`

	// Location is the town or city. May be empty.
	Location string `json:"location"`

	// Description is the longest description any member offered.
	Description *string `json:"description"`

	// ImageURL is the first image any member offered.
	ImageURL *string `json:"image_url"`

	// SourceURLs lists every contributing page, first seen first,
	// without duplicates.
	SourceURLs []string `json:"source_urls"`

	// SourceNames lists every contributing source, first seen first,
	// without duplicates. Parallel in meaning to SourceURLs, not in index.
	SourceNames []string `json:"source_names"`

	// IsPast reports whether Date is strictly before the reference
	// "today". It is a view over Date, never a stored fact: it is
	// recomputed whenever the document is built or reloaded.
	IsPast bool `json:"is_past"`
}

// Past reports whether the event date lies strictly before today.
// Events with a malformed date are never reported as past.
func (e CanonicalEvent) Past(today time.Time) bool {
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return false
	}
	y, m, day := today.Date()
	return d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// FeedDocument is the published artifact consumed by the display page.
// Field names and the list shape of the attribution fields are a stable
// contract with that page.
type FeedDocument struct {
	// LastUpdated is the UTC generation timestamp, RFC 3339.
	LastUpdated string `json:"last_updated"`

	// Count is the number of events in the document.
	Count int `json:"count"`

	// Events is the canonical list, sorted by (date, time, title)
	// with missing times ordered after timed events on the same date.
	Events []CanonicalEvent `json:"events"`
}

// RefreshPast recomputes every event's IsPast flag against today.
// Called at document construction and again when a stored document
// is reloaded, since "today" may have moved on since it was written.
func (d *FeedDocument) RefreshPast(today time.Time) {
	for i := range d.Events {
		d.Events[i].IsPast = d.Events[i].Past(today)
	}
}
