// Package tribe fetches events from WordPress sites running The
// Events Calendar plugin, through its REST API
// (wp-json/tribe/events/v1/events).
package tribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/htmltext"
	"github.com/teatrofeed/teatrofeed/internal/httpx"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultPerPage is the API page size.
	DefaultPerPage = 50

	// DefaultMaxPages caps pagination against runaway calendars.
	DefaultMaxPages = 20

	// startDateLayout is the API's local-time timestamp format.
	startDateLayout = "2006-01-02 15:04:05"
)

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// URL is the events endpoint, e.g.
	// https://example.it/wp-json/tribe/events/v1/events.
	URL string

	// Venue and Location fill records whose API venue is missing.
	// Small theatres rarely restate their own address.
	Venue    string
	Location string

	// PerPage and MaxPages bound pagination when positive.
	PerPage  int
	MaxPages int
}

// Fetcher pages through a The Events Calendar endpoint.
type Fetcher struct {
	cfg    Config
	client *httpx.Client
	clk    clock.Clock
}

// New creates a The Events Calendar fetcher.
func New(cfg Config, client *httpx.Client, clk clock.Clock) *Fetcher {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Fetcher{cfg: cfg, client: client, clk: clk}
}

// Name returns the configured source name.
func (f *Fetcher) Name() string {
	return f.cfg.Name
}

// page is one API response. Events stay raw so a single oddly shaped
// record cannot sink the whole page.
type page struct {
	Events []json.RawMessage `json:"events"`
	Next   string            `json:"next"`
}

// apiEvent is one event record. Venue and Image stay raw because the
// API emits [] or false instead of an object when they are absent.
type apiEvent struct {
	Title     string          `json:"title"`
	StartDate string          `json:"start_date"`
	URL       string          `json:"url"`
	Venue     json.RawMessage `json:"venue"`
	Excerpt   rendered        `json:"excerpt"`
	Image     json.RawMessage `json:"image"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type apiVenue struct {
	Venue string `json:"venue"`
	City  string `json:"city"`
}

type apiImage struct {
	URL string `json:"url"`
}

// Fetch pages through upcoming events starting today. A failure on the
// first page fails the source; a failure mid-pagination keeps the
// records already collected.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	var events []domain.RawEvent

	for pageNum := 1; pageNum <= f.cfg.MaxPages; pageNum++ {
		var p page
		if err := f.client.GetJSON(ctx, f.pageURL(pageNum), &p); err != nil {
			if pageNum == 1 {
				return nil, fmt.Errorf("fetching events page 1: %w", err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: page %d failed, keeping %d records: %v",
				f.cfg.Name, pageNum, len(events), err)
			break
		}

		for _, raw := range p.Events {
			var ev apiEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				logger.Debug("%s: skipping malformed record: %v", f.cfg.Name, err)
				continue
			}
			parsed, err := f.parse(ev)
			if err != nil {
				logger.Debug("%s: skipping %q: %v", f.cfg.Name, ev.Title, err)
				continue
			}
			events = append(events, parsed)
		}

		if p.Next == "" || len(p.Events) == 0 {
			break
		}
	}

	return events, nil
}

func (f *Fetcher) pageURL(pageNum int) string {
	q := url.Values{}
	q.Set("start_date", f.clk.Now().Format(domain.DateLayout))
	q.Set("per_page", strconv.Itoa(f.cfg.PerPage))
	q.Set("page", strconv.Itoa(pageNum))
	return f.cfg.URL + "?" + q.Encode()
}

// parse maps one API record onto a raw event.
func (f *Fetcher) parse(ev apiEvent) (domain.RawEvent, error) {
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		return domain.RawEvent{}, fmt.Errorf("missing title")
	}

	start, err := time.Parse(startDateLayout, ev.StartDate)
	if err != nil {
		return domain.RawEvent{}, fmt.Errorf("unparseable start_date %q", ev.StartDate)
	}

	raw := domain.RawEvent{
		Title:      title,
		Date:       start.Format(domain.DateLayout),
		Time:       clockTime(start),
		Venue:      f.cfg.Venue,
		Location:   f.cfg.Location,
		SourceURL:  ev.URL,
		SourceName: f.cfg.Name,
	}

	var v apiVenue
	if err := json.Unmarshal(ev.Venue, &v); err == nil {
		if v.Venue != "" {
			raw.Venue = v.Venue
		}
		if v.City != "" {
			raw.Location = v.City
		}
	}

	if desc := htmltext.Strip(ev.Excerpt.Rendered); desc != "" {
		raw.Description = &desc
	}

	var img apiImage
	if err := json.Unmarshal(ev.Image, &img); err == nil && img.URL != "" {
		raw.ImageURL = &img.URL
	}

	return raw, nil
}

// clockTime renders the start's time of day, treating midnight as "no
// time published". The Events Calendar stores all-day events at 00:00.
func clockTime(start time.Time) *string {
	if start.Hour() == 0 && start.Minute() == 0 {
		return nil
	}
	t := start.Format("15:04")
	return &t
}
