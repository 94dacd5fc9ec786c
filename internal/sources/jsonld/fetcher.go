// Package jsonld fetches events from sites that embed schema.org
// structured data in their pages. It reads every application/ld+json
// block, unwraps arrays and @graph containers, and keeps the entities
// whose @type marks an event.
package jsonld

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
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

// eventTypes are the schema.org types treated as listable events.
var eventTypes = map[string]bool{
	"Event":        true,
	"TheaterEvent": true,
	"DanceEvent":   true,
	"MusicEvent":   true,
}

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// URL is the listing page; URLs adds further pages, e.g. a season
	// programme split across sections.
	URL  string
	URLs []string

	// Venue and Location fill records whose structured data carries
	// neither.
	Venue    string
	Location string
}

// Fetcher scrapes structured data from one or more listing pages.
type Fetcher struct {
	cfg    Config
	client *httpx.Client
	clk    clock.Clock
}

// New creates a structured-data fetcher.
func New(cfg Config, client *httpx.Client, clk clock.Clock) *Fetcher {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Fetcher{cfg: cfg, client: client, clk: clk}
}

// Name returns the configured source name.
func (f *Fetcher) Name() string {
	return f.cfg.Name
}

// entity is one schema.org node. Type, Location and Image stay raw
// because publishers emit them as strings, objects or lists.
type entity struct {
	Type        json.RawMessage `json:"@type"`
	ID          string          `json:"@id"`
	Name        string          `json:"name"`
	StartDate   string          `json:"startDate"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Location    json.RawMessage `json:"location"`
	Image       json.RawMessage `json:"image"`
}

type place struct {
	Name    string          `json:"name"`
	Address json.RawMessage `json:"address"`
}

type postalAddress struct {
	AddressLocality string `json:"addressLocality"`
}

// Fetch scrapes every configured page, deduplicating events by their
// source URL. Pages that fail are skipped; only all pages failing
// fails the source.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	pages := f.pages()

	var (
		events  []domain.RawEvent
		seen    = make(map[string]bool)
		lastErr error
		ok      int
	)

	for _, pageURL := range pages {
		body, err := f.client.Get(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: page %s failed: %v", f.cfg.Name, pageURL, err)
			lastErr = err
			continue
		}
		ok++

		for _, block := range htmltext.JSONLDBlocks(string(body)) {
			for _, raw := range entities(block) {
				var ent entity
				if err := json.Unmarshal(raw, &ent); err != nil {
					logger.Debug("%s: skipping malformed entity: %v", f.cfg.Name, err)
					continue
				}
				if !isEventType(ent.Type) {
					continue
				}
				ev, err := f.parse(ent, pageURL)
				if err != nil {
					logger.Debug("%s: skipping %q: %v", f.cfg.Name, ent.Name, err)
					continue
				}
				if seen[ev.SourceURL] {
					continue
				}
				seen[ev.SourceURL] = true
				events = append(events, ev)
			}
		}
	}

	if ok == 0 {
		return nil, fmt.Errorf("all pages failed: %w", lastErr)
	}
	return events, nil
}

// pages returns the configured page URLs in order, without duplicates.
func (f *Fetcher) pages() []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range append([]string{f.cfg.URL}, f.cfg.URLs...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// entities splits one JSON-LD block into its top-level nodes. A block
// is a single object, an array of objects, or a @graph container.
func entities(block string) []json.RawMessage {
	raw := json.RawMessage(block)

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var container struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(raw, &container); err == nil && len(container.Graph) > 0 {
		return container.Graph
	}

	return []json.RawMessage{raw}
}

// isEventType reports whether a raw @type value names an event,
// accepting both the string and the list form.
func isEventType(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return eventTypes[s]
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, s := range list {
			if eventTypes[s] {
				return true
			}
		}
	}
	return false
}

// parse maps one event entity onto a raw event.
func (f *Fetcher) parse(ent entity, pageURL string) (domain.RawEvent, error) {
	title := strings.TrimSpace(ent.Name)
	if title == "" {
		return domain.RawEvent{}, fmt.Errorf("missing name")
	}
	if ent.StartDate == "" {
		return domain.RawEvent{}, fmt.Errorf("missing startDate")
	}
	start, err := parseISO(ent.StartDate)
	if err != nil {
		return domain.RawEvent{}, fmt.Errorf("unparseable startDate %q", ent.StartDate)
	}

	raw := domain.RawEvent{
		Title:      title,
		Date:       start.Format(domain.DateLayout),
		Time:       clockTime(start),
		Venue:      f.cfg.Venue,
		Location:   f.cfg.Location,
		SourceURL:  resolveURL(pageURL, firstNonEmpty(ent.URL, ent.ID)),
		SourceName: f.cfg.Name,
	}

	if venue, city := decodePlace(ent.Location); venue != "" || city != "" {
		if venue != "" {
			raw.Venue = venue
		}
		if city != "" {
			raw.Location = city
		}
	}

	if desc := strings.TrimSpace(ent.Description); desc != "" {
		raw.Description = &desc
	}
	if img := decodeImage(ent.Image); img != "" {
		raw.ImageURL = &img
	}

	return raw, nil
}

// decodePlace reads a location value that is a Place object or a bare
// venue name.
func decodePlace(raw json.RawMessage) (venue, city string) {
	var p place
	if err := json.Unmarshal(raw, &p); err == nil {
		var addr postalAddress
		_ = json.Unmarshal(p.Address, &addr)
		return p.Name, addr.AddressLocality
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	return "", ""
}

// decodeImage reads an image value that is a URL string, an
// ImageObject, or a list of either.
func decodeImage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
		ID  string `json:"@id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if u := firstNonEmpty(obj.URL, obj.ID); u != "" {
			return u
		}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, el := range list {
			if u := decodeImage(el); u != "" {
				return u
			}
		}
	}
	return ""
}

// resolveURL makes ref absolute against the page it was found on.
func resolveURL(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return ref
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}

// isoLayouts are the startDate shapes publishers emit, most specific
// first. Seconds are optional in schema.org timestamps.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no ISO layout matches %q", s)
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
