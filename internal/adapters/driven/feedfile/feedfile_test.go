package feedfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func testDoc() *domain.FeedDocument {
	evening := "20:30"
	return &domain.FeedDocument{
		LastUpdated: "2026-02-10T12:00:00Z",
		Count:       2,
		Events: []domain.CanonicalEvent{
			{
				ID:          "a1b2c3d4e5f60718",
				Title:       "Romeo & Giulietta",
				Date:        "2026-02-14",
				Time:        &evening,
				Venue:       "Teatro Sociale",
				Location:    "Trento",
				SourceURLs:  []string{"https://example.com/romeo"},
				SourceNames: []string{"example.com"},
			},
			{
				ID:          "0918273645abcdef",
				Title:       "L'Avaro",
				Date:        "2026-02-01",
				Venue:       "Teatro San Marco",
				Location:    "Trento",
				SourceURLs:  []string{"https://example.com/avaro"},
				SourceNames: []string{"example.com"},
				IsPast:      true,
			},
		},
	}
}

func TestStore_Write_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	store := New(path, false, clock.NewFixed(testNow))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, testDoc()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testDoc(), got)
}

func TestStore_Write_DoesNotEscapeHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	store := New(path, false, clock.NewFixed(testNow))

	require.NoError(t, store.Write(context.Background(), testDoc()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Romeo & Giulietta")
	assert.NotContains(t, string(data), `&`)
}

func TestStore_Write_PrettyIndents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	store := New(path, true, clock.NewFixed(testNow))

	require.NoError(t, store.Write(context.Background(), testDoc()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"events\": [")
}

func TestStore_Write_CreatesOutputDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "events.json")
	store := New(path, false, clock.NewFixed(testNow))

	require.NoError(t, store.Write(context.Background(), testDoc()))
	assert.FileExists(t, path)
}

func TestStore_Write_ReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.json")
	store := New(path, false, clock.NewFixed(testNow))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, testDoc()))

	second := testDoc()
	second.Events = second.Events[:1]
	second.Count = 1
	require.NoError(t, store.Write(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)

	// No stray temporary files once the rename has happened.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "events.json", entries[0].Name())
}

func TestStore_Load_Missing(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "events.json"), false, clock.NewFixed(testNow))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrFeedNotFound)
}

func TestStore_Load_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	store := New(path, false, clock.NewFixed(testNow))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decoding feed"))
}

func TestStore_Load_RefreshesPastFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	ctx := context.Background()

	// Written when both events were upcoming.
	writer := New(path, false, clock.NewFixed(testNow))
	doc := testDoc()
	doc.Events[1].IsPast = false
	require.NoError(t, writer.Write(ctx, doc))

	// Reloaded after the second event's date has gone by.
	reader := New(path, false, clock.NewFixed(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)))
	got, err := reader.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Events[0].IsPast, "2026-02-14 is past on the 15th")
	assert.True(t, got.Events[1].IsPast)
}
