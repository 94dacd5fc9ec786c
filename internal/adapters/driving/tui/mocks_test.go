package tui

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// mockFeedReader implements driving.FeedReader for testing.
type mockFeedReader struct {
	doc *domain.FeedDocument
	err error
}

func (m *mockFeedReader) Current(_ context.Context) (*domain.FeedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func strPtr(s string) *string {
	return &s
}

// testFeed returns a small feed document for TUI tests.
func testFeed() *domain.FeedDocument {
	return &domain.FeedDocument{
		LastUpdated: "2026-02-10T12:00:00Z",
		Count:       3,
		Events: []domain.CanonicalEvent{
			{
				ID:          "evt-1",
				Title:       "L'Avaro",
				Date:        "2026-02-01",
				Time:        strPtr("21:00"),
				Venue:       "Teatro Sociale",
				Location:    "Trento",
				SourceURLs:  []string{"https://www.teatrosociale.it/avaro"},
				SourceNames: []string{"Teatro Sociale"},
				IsPast:      true,
			},
			{
				ID:          "evt-2",
				Title:       "Romeo e Giulietta",
				Date:        "2026-02-14",
				Time:        strPtr("20:30"),
				Venue:       "Teatro Sanbàpolis",
				Location:    "Trento",
				Description: strPtr("Il classico di Shakespeare riletto dalla compagnia Arditodesìo."),
				SourceURLs: []string{
					"https://www.comune.trento.it/eventi/romeo",
					"https://www.teatrosanbapolis.it/romeo",
				},
				SourceNames: []string{"Comune di Trento", "Teatro Sanbàpolis"},
			},
			{
				ID:          "evt-3",
				Title:       "Concerto di Primavera",
				Date:        "2026-03-21",
				Venue:       "Auditorium Santa Chiara",
				Location:    "Trento",
				SourceURLs:  []string{"https://www.centrosantachiara.it/concerto"},
				SourceNames: []string{"Centro Santa Chiara"},
			},
		},
	}
}
