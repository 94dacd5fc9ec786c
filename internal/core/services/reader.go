package services

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driving"
)

// Ensure Reader implements the interface.
var _ driving.FeedReader = (*Reader)(nil)

// Reader hands the written feed document to read-only consumers
// (the browser, the MCP server, the publisher).
type Reader struct {
	store driven.FeedStore
}

// NewReader creates a feed reader over the given store.
func NewReader(store driven.FeedStore) *Reader {
	return &Reader{store: store}
}

// Current returns the most recently written document.
func (r *Reader) Current(ctx context.Context) (*domain.FeedDocument, error) {
	return r.store.Load(ctx)
}
