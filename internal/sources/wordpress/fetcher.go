// Package wordpress fetches events from WordPress sites through the
// core REST API (wp-json/wp/v2), reading event dates and venues from
// ACF custom fields with the post date as a fallback.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
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
	// DefaultResource is the custom post type tried first; plain posts
	// are the fallback when a site does not register one.
	DefaultResource = "eventi"

	// DefaultPerPage is the API page size.
	DefaultPerPage = 100

	// DefaultMaxPages caps pagination.
	DefaultMaxPages = 10

	// fields trims the response to what the parser reads.
	fields = "id,title,date,link,excerpt,acf,meta,_embedded"
)

// clockPattern matches a time of day in the loose notations ACF fields
// carry, e.g. "20.30" or "ore 20:30".
var clockPattern = regexp.MustCompile(`(\d{1,2})[.:](\d{2})`)

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// URL is the site root, e.g. https://www.trentinospettacoli.it.
	URL string

	// Resource overrides the custom post type tried first.
	Resource string

	// Venue and Location fill records whose ACF fields carry neither.
	Venue    string
	Location string

	// PerPage and MaxPages bound pagination when positive.
	PerPage  int
	MaxPages int
}

// Fetcher pages through a WordPress REST endpoint.
type Fetcher struct {
	cfg    Config
	client *httpx.Client
	clk    clock.Clock
}

// New creates a WordPress REST fetcher.
func New(cfg Config, client *httpx.Client, clk clock.Clock) *Fetcher {
	if cfg.Resource == "" {
		cfg.Resource = DefaultResource
	}
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

// apiItem is one REST record. Title and ACF stay raw because sites
// disagree on their shapes: title is usually {"rendered": ...} but
// sometimes a plain string, and acf is false or [] when the plugin
// is inactive.
type apiItem struct {
	Title    json.RawMessage `json:"title"`
	Date     string          `json:"date"`
	Link     string          `json:"link"`
	Excerpt  json.RawMessage `json:"excerpt"`
	ACF      json.RawMessage `json:"acf"`
	Embedded embedded        `json:"_embedded"`
}

type embedded struct {
	FeaturedMedia []featuredMedia `json:"wp:featuredmedia"`
}

type featuredMedia struct {
	SourceURL string `json:"source_url"`
}

// acfFields are the custom-field spellings seen across the region's
// theatre sites.
type acfFields struct {
	DataEvento string `json:"data_evento"`
	StartDate  string `json:"start_date"`
	Date       string `json:"date"`
	OraInizio  string `json:"ora_inizio"`
	Time       string `json:"time"`
	Luogo      string `json:"luogo"`
	Venue      string `json:"venue"`
	Teatro     string `json:"teatro"`
	Comune     string `json:"comune"`
	City       string `json:"city"`
	Location   string `json:"location"`
}

// Fetch tries the configured custom post type first and plain posts
// second, returning the first resource that yields events.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	var lastErr error
	for _, resource := range f.resources() {
		events, err := f.fetchResource(ctx, resource)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("%s: resource %q failed: %v", f.cfg.Name, resource, err)
			lastErr = err
			continue
		}
		if len(events) > 0 {
			return events, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all endpoints failed: %w", lastErr)
	}
	return nil, nil
}

func (f *Fetcher) resources() []string {
	if f.cfg.Resource == "posts" {
		return []string{"posts"}
	}
	return []string{f.cfg.Resource, "posts"}
}

// fetchResource pages through one endpoint, following the
// X-WP-TotalPages response header. A failure on the first page fails
// the resource; a failure mid-pagination keeps the records already
// collected.
func (f *Fetcher) fetchResource(ctx context.Context, resource string) ([]domain.RawEvent, error) {
	var events []domain.RawEvent
	totalPages := 1

	for page := 1; page <= f.cfg.MaxPages; page++ {
		body, header, err := f.client.GetWithHeader(ctx, f.pageURL(resource, page))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: %s page %d failed, keeping %d records: %v",
				f.cfg.Name, resource, page, len(events), err)
			break
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("decoding %s page 1: %w", resource, err)
			}
			break
		}
		if len(items) == 0 {
			break
		}

		for _, raw := range items {
			var item apiItem
			if err := json.Unmarshal(raw, &item); err != nil {
				logger.Debug("%s: skipping malformed record: %v", f.cfg.Name, err)
				continue
			}
			parsed, err := f.parse(item)
			if err != nil {
				logger.Debug("%s: skipping record: %v", f.cfg.Name, err)
				continue
			}
			events = append(events, parsed)
		}

		if n, err := strconv.Atoi(header.Get("X-WP-TotalPages")); err == nil {
			totalPages = n
		}
		if page >= totalPages {
			break
		}
	}

	return events, nil
}

func (f *Fetcher) pageURL(resource string, page int) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(f.cfg.PerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("after", f.clk.Now().Format(domain.DateLayout)+"T00:00:00")
	q.Set("_fields", fields)
	q.Set("_embed", "wp:featuredmedia")
	return strings.TrimRight(f.cfg.URL, "/") + "/wp-json/wp/v2/" + resource + "?" + q.Encode()
}

// parse maps one REST record onto a raw event.
func (f *Fetcher) parse(item apiItem) (domain.RawEvent, error) {
	title := htmltext.Strip(decodeRendered(item.Title))
	if title == "" {
		return domain.RawEvent{}, fmt.Errorf("missing title")
	}

	var acf acfFields
	// A decode failure leaves every field empty, same as no ACF at all.
	_ = json.Unmarshal(item.ACF, &acf)

	dateStr := firstNonEmpty(acf.DataEvento, acf.StartDate, acf.Date, item.Date)
	if dateStr == "" {
		return domain.RawEvent{}, fmt.Errorf("missing date")
	}
	start, err := parseISO(dateStr)
	if err != nil {
		return domain.RawEvent{}, fmt.Errorf("unparseable date %q", dateStr)
	}

	timeStr := clockTime(start)
	if timeStr == nil {
		timeStr = extractClock(firstNonEmpty(acf.OraInizio, acf.Time))
	}

	raw := domain.RawEvent{
		Title:      title,
		Date:       start.Format(domain.DateLayout),
		Time:       timeStr,
		Venue:      firstNonEmpty(acf.Luogo, acf.Venue, acf.Teatro, f.cfg.Venue),
		Location:   firstNonEmpty(acf.Comune, acf.City, acf.Location, f.cfg.Location),
		SourceURL:  item.Link,
		SourceName: f.cfg.Name,
	}

	if desc := htmltext.Strip(decodeRendered(item.Excerpt)); desc != "" {
		raw.Description = &desc
	}
	if media := item.Embedded.FeaturedMedia; len(media) > 0 && media[0].SourceURL != "" {
		raw.ImageURL = &media[0].SourceURL
	}

	return raw, nil
}

// decodeRendered reads a field that is either {"rendered": "..."} or a
// plain string.
func decodeRendered(raw json.RawMessage) string {
	var obj struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Rendered
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// isoLayouts are the timestamp shapes WordPress and ACF emit, most
// specific first.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
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

// clockTime renders the timestamp's time of day, treating midnight as
// "no time published".
func clockTime(start time.Time) *string {
	if start.Hour() == 0 && start.Minute() == 0 {
		return nil
	}
	t := start.Format("15:04")
	return &t
}

// extractClock pulls a clock time out of a loose ACF value.
func extractClock(s string) *string {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	t := fmt.Sprintf("%02d:%s", h, m[2])
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
