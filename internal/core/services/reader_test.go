package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/memory"
	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

func TestReader_Current(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewFeedStore(clock.NewFixed(now))

	doc := &domain.FeedDocument{
		LastUpdated: "2026-01-20T08:00:00Z",
		Count:       2,
		Events: []domain.CanonicalEvent{
			{ID: "evt-1", Title: "L'Avaro", Date: "2026-01-15", Venue: "Teatro Sociale"},
			{ID: "evt-2", Title: "Romeo e Giulietta", Date: "2026-02-14", Venue: "Teatro Sanbàpolis"},
		},
	}
	require.NoError(t, store.Write(context.Background(), doc))

	reader := NewReader(store)
	got, err := reader.Current(context.Background())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Count)

	// Past flags reflect the read-time today, not the write-time one.
	assert.True(t, got.Events[0].IsPast)
	assert.False(t, got.Events[1].IsPast)
}

func TestReader_Current_NoFeed(t *testing.T) {
	reader := NewReader(memory.NewFeedStore(nil))

	_, err := reader.Current(context.Background())

	assert.ErrorIs(t, err, domain.ErrFeedNotFound)
}
