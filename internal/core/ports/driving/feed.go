package driving

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// FeedAggregator drives one complete aggregation run: fetch every
// source, deduplicate, merge and produce the feed document.
type FeedAggregator interface {
	// Run executes the pipeline once and returns the document together
	// with the run record. When every source fails, the error wraps
	// domain.ErrAllSourcesFailed and no document is returned; partial
	// failure is not an error and shows up in the record instead.
	Run(ctx context.Context) (*domain.FeedDocument, *domain.RunRecord, error)
}

// FeedReader gives read-only consumers access to the written feed.
type FeedReader interface {
	// Current returns the most recently written feed document with
	// IsPast recomputed for the present day.
	Current(ctx context.Context) (*domain.FeedDocument, error)
}

// RunHistory exposes past run records.
type RunHistory interface {
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns one run by id. Returns domain.ErrNotFound when the
	// run does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}
