package memory

import (
	"context"
	"sync"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

// Ensure FeedStore implements the interface.
var _ driven.FeedStore = (*FeedStore)(nil)

// FeedStore is an in-memory implementation of driven.FeedStore.
type FeedStore struct {
	mu  sync.RWMutex
	doc *domain.FeedDocument
	clk clock.Clock
}

// NewFeedStore creates a new in-memory feed store. A nil clock falls
// back to the system clock.
func NewFeedStore(clk clock.Clock) *FeedStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &FeedStore{clk: clk}
}

// Write stores the document, replacing any previous one.
func (s *FeedStore) Write(_ context.Context, doc *domain.FeedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doc
	copied.Events = make([]domain.CanonicalEvent, len(doc.Events))
	copy(copied.Events, doc.Events)
	s.doc = &copied
	return nil
}

// Load returns a copy of the stored document with the past flags
// recomputed against the present day.
func (s *FeedStore) Load(_ context.Context) (*domain.FeedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, domain.ErrFeedNotFound
	}
	copied := *s.doc
	copied.Events = make([]domain.CanonicalEvent, len(s.doc.Events))
	copy(copied.Events, s.doc.Events)
	copied.RefreshPast(s.clk.Now())
	return &copied, nil
}

// Path identifies the store for display.
func (s *FeedStore) Path() string {
	return "(in memory)"
}
