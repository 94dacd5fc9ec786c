// Package tui provides the interactive feed browser for teatrofeed.
// It implements a driving adapter following hexagonal architecture
// principles: the browser reads the published feed through a driving
// port and never touches the aggregation pipeline.
package tui

import (
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reader provides access to the published feed document.
	Reader driving.FeedReader
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(reader driving.FeedReader) *Ports {
	return &Ports{Reader: reader}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reader == nil {
		return ErrMissingFeedReader
	}
	return nil
}
