// Package local reads events from a hand-curated JSON file. It covers
// venues that publish their programme only on paper or social media:
// someone types the listings in, the pipeline treats them like any
// other source.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// File is the path of the JSON listing file.
	File string

	// Venue and Location fill records that omit them.
	Venue    string
	Location string
}

// Fetcher loads one listing file per run.
type Fetcher struct {
	cfg Config
}

// New creates a listing-file fetcher.
func New(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

// Name returns the configured source name.
func (f *Fetcher) Name() string {
	return f.cfg.Name
}

// record is one listing entry. Field names match the published feed
// vocabulary so an entry can be drafted by copying one out of it.
type record struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Fetch reads and maps the listing file. Entries are passed through
// as written; the pipeline's validation owns rejecting bad ones, so
// a curation mistake is reported instead of silently dropped.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.cfg.File)
	if err != nil {
		return nil, fmt.Errorf("reading listing file: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.cfg.File, err)
	}

	events := make([]domain.RawEvent, 0, len(records))
	for _, r := range records {
		raw := domain.RawEvent{
			Title:      r.Title,
			Date:       r.Date,
			Venue:      firstNonEmpty(r.Venue, f.cfg.Venue),
			Location:   firstNonEmpty(r.Location, f.cfg.Location),
			SourceURL:  r.URL,
			SourceName: f.cfg.Name,
		}
		if r.Time != "" {
			t := r.Time
			raw.Time = &t
		}
		if r.Description != "" {
			d := r.Description
			raw.Description = &d
		}
		if r.ImageURL != "" {
			u := r.ImageURL
			raw.ImageURL = &u
		}
		events = append(events, raw)
	}

	return events, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
