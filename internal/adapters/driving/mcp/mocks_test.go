package mcp

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// mockFeedReader is a mock implementation of driving.FeedReader.
type mockFeedReader struct {
	doc *domain.FeedDocument
	err error
}

func (m *mockFeedReader) Current(_ context.Context) (*domain.FeedDocument, error) {
	return m.doc, m.err
}

func strPtr(s string) *string {
	return &s
}

// testFeed builds a small document in feed order: two upcoming events
// and one already past.
func testFeed() *domain.FeedDocument {
	return &domain.FeedDocument{
		LastUpdated: "2026-02-10T12:00:00Z",
		Count:       3,
		Events: []domain.CanonicalEvent{
			{
				ID:          "a1b2c3d4e5f60708",
				Title:       "L'Avaro",
				Date:        "2026-02-01",
				Time:        strPtr("21:00"),
				Venue:       "Teatro Sociale",
				Location:    "Trento",
				SourceURLs:  []string{"https://www.teatrosociale.it/l-avaro"},
				SourceNames: []string{"teatrosociale.it"},
				IsPast:      true,
			},
			{
				ID:          "0011223344556677",
				Title:       "Romeo e Giulietta",
				Date:        "2026-02-14",
				Time:        strPtr("20:30"),
				Venue:       "Teatro Sanbàpolis",
				Location:    "Trento",
				Description: strPtr("Il classico di Shakespeare riletto dalla compagnia Arditodesìo."),
				SourceURLs: []string{
					"https://www.comune.trento.it/romeo-e-giulietta",
					"https://www.teatrosanbapolis.it/romeo",
				},
				SourceNames: []string{"comune.trento.it", "teatrosanbapolis.it"},
			},
			{
				ID:         "8899aabbccddeeff",
				Title:      "Concerto di Primavera",
				Date:       "2026-03-21",
				Venue:      "Auditorium Santa Chiara",
				Location:   "Trento",
				SourceURLs: []string{"https://www.centrosantachiara.it/concerto"},
				SourceNames: []string{
					"centrosantachiara.it",
				},
			},
		},
	}
}
