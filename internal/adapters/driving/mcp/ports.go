package mcp

import (
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Reader provides access to the published feed document.
	Reader driving.FeedReader
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reader == nil {
		return ErrMissingFeedReader
	}
	return nil
}
