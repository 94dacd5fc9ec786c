// Package gcal fetches events from a public Google Calendar. Several
// smaller venues maintain their programme as a shared calendar rather
// than a website listing.
package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/htmltext"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// maxResults is the API page size.
	maxResults = 250

	// DefaultMaxPages caps pagination.
	DefaultMaxPages = 10
)

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// CalendarID identifies the public calendar.
	CalendarID string

	// APIKey authorises read access. Public calendars need no OAuth.
	APIKey string

	// Venue and Location fill records whose calendar entry carries no
	// location of its own.
	Venue    string
	Location string

	// MaxPages bounds pagination when positive.
	MaxPages int
}

// Fetcher lists upcoming events from one calendar.
type Fetcher struct {
	cfg  Config
	clk  clock.Clock
	opts []option.ClientOption
}

// New creates a calendar fetcher. Extra client options are appended
// after the API key; tests use them to point the client at a stub.
func New(cfg Config, clk clock.Clock, opts ...option.ClientOption) *Fetcher {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Fetcher{cfg: cfg, clk: clk, opts: opts}
}

// Name returns the configured source name.
func (f *Fetcher) Name() string {
	return f.cfg.Name
}

// Fetch lists events starting from now, expanding recurring events
// into single instances. A failure on the first page fails the
// source; a failure mid-pagination keeps the records already
// collected.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating calendar client: %w", err)
	}

	var events []domain.RawEvent
	pageToken := ""

	for page := 1; page <= f.cfg.MaxPages; page++ {
		call := svc.Events.List(f.cfg.CalendarID).
			ShowDeleted(false).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(f.clk.Now().UTC().Format(time.RFC3339)).
			MaxResults(maxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("listing calendar %s: %w", f.cfg.CalendarID, err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: page %d failed, keeping %d records: %v",
				f.cfg.Name, page, len(events), err)
			break
		}

		for _, item := range resp.Items {
			parsed, err := f.parse(item)
			if err != nil {
				logger.Debug("%s: skipping %q: %v", f.cfg.Name, item.Summary, err)
				continue
			}
			events = append(events, parsed)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return events, nil
}

func (f *Fetcher) service(ctx context.Context) (*calendar.Service, error) {
	opts := make([]option.ClientOption, 0, len(f.opts)+1)
	if f.cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(f.cfg.APIKey))
	}
	opts = append(opts, f.opts...)
	return calendar.NewService(ctx, opts...)
}

// parse maps one calendar entry onto a raw event. All-day entries
// carry a date and no time.
func (f *Fetcher) parse(item *calendar.Event) (domain.RawEvent, error) {
	if item == nil || item.Status == "cancelled" {
		return domain.RawEvent{}, fmt.Errorf("cancelled")
	}
	title := strings.TrimSpace(item.Summary)
	if title == "" {
		return domain.RawEvent{}, fmt.Errorf("missing summary")
	}
	if item.Start == nil {
		return domain.RawEvent{}, fmt.Errorf("missing start")
	}

	raw := domain.RawEvent{
		Title:      title,
		Venue:      firstNonEmpty(strings.TrimSpace(item.Location), f.cfg.Venue),
		Location:   f.cfg.Location,
		SourceURL:  item.HtmlLink,
		SourceName: f.cfg.Name,
	}

	switch {
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return domain.RawEvent{}, fmt.Errorf("unparseable start %q", item.Start.DateTime)
		}
		raw.Date = start.Format(domain.DateLayout)
		raw.Time = clockTime(start)
	case item.Start.Date != "":
		raw.Date = item.Start.Date
	default:
		return domain.RawEvent{}, fmt.Errorf("start has neither date nor dateTime")
	}

	if desc := htmltext.Strip(item.Description); desc != "" {
		raw.Description = &desc
	}

	return raw, nil
}

// clockTime renders the start's time of day, treating midnight as "no
// time published".
func clockTime(start time.Time) *string {
	if start.Hour() == 0 && start.Minute() == 0 {
		return nil
	}
	t := start.Format("15:04")
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
