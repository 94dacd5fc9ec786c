package driven

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// FeedStore persists the published feed document.
//
// The document is the pipeline's only output and is never read back in
// as pipeline input; Load exists for the read-only consumers (browser,
// MCP server, publisher).
type FeedStore interface {
	// Write stores the document atomically, replacing any previous one.
	Write(ctx context.Context, doc *domain.FeedDocument) error

	// Load reads the current document. Implementations recompute the
	// IsPast flags against the present day, since the document may have
	// been written before midnight. Returns domain.ErrFeedNotFound when
	// nothing has been written yet.
	Load(ctx context.Context) (*domain.FeedDocument, error)

	// Path returns the location of the stored document, for display.
	Path() string
}
