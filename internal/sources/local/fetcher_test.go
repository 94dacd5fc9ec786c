package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeListing(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetcher_Fetch_MapsRecords(t *testing.T) {
	path := writeListing(t, `[
  {
    "title": "Cabaret di Capodanno",
    "date": "2026-12-31",
    "time": "22:00",
    "venue": "Circolo Operaio",
    "location": "Trento",
    "url": "https://www.facebook.com/events/123",
    "description": "Serata con brindisi.",
    "image_url": "https://example.it/capodanno.jpg"
  },
  {
    "title": "Lettura Scenica",
    "date": "2026-11-02"
  }
]`)

	f := New(Config{
		Name:     "curated",
		File:     path,
		Venue:    "Sala Polivalente",
		Location: "Baselga di Pinè",
	})

	events, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	full := events[0]
	assert.Equal(t, "Cabaret di Capodanno", full.Title)
	assert.Equal(t, "2026-12-31", full.Date)
	require.NotNil(t, full.Time)
	assert.Equal(t, "22:00", *full.Time)
	assert.Equal(t, "Circolo Operaio", full.Venue)
	assert.Equal(t, "Trento", full.Location)
	assert.Equal(t, "https://www.facebook.com/events/123", full.SourceURL)
	assert.Equal(t, "curated", full.SourceName)
	require.NotNil(t, full.Description)
	assert.Equal(t, "Serata con brindisi.", *full.Description)
	require.NotNil(t, full.ImageURL)

	minimal := events[1]
	assert.Equal(t, "Lettura Scenica", minimal.Title)
	assert.Nil(t, minimal.Time)
	assert.Equal(t, "Sala Polivalente", minimal.Venue)
	assert.Equal(t, "Baselga di Pinè", minimal.Location)
	assert.Nil(t, minimal.Description)
	assert.Nil(t, minimal.ImageURL)
}

func TestFetcher_Fetch_KeepsInvalidEntriesForValidation(t *testing.T) {
	path := writeListing(t, `[{"title": "", "date": "non è una data"}]`)

	f := New(Config{Name: "curated", File: path})

	events, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Title)
}

func TestFetcher_Fetch_MissingFile(t *testing.T) {
	f := New(Config{Name: "curated", File: filepath.Join(t.TempDir(), "absent.json")})

	events, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, events)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetcher_Fetch_MalformedJSON(t *testing.T) {
	path := writeListing(t, `{"not": "a list"}`)

	f := New(Config{Name: "curated", File: path})

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestFetcher_Name(t *testing.T) {
	assert.Equal(t, "curated", New(Config{Name: "curated"}).Name())
}
