// Package culturatrentino fetches theatre listings from the public
// events calendar of cultura.trentino.it.
//
// The calendar API answers one query per time range. Named ranges
// (today, week, month) cover the near term; specific dd/mm/yyyy
// queries, one per week, extend the horizon. Events repeat across
// overlapping ranges and are deduplicated by their upstream id.
package culturatrentino

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/httpx"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultBaseURL is the calendar search endpoint.
	DefaultBaseURL = "https://www.cultura.trentino.it/calendar/search/node/(id)/298848"

	// theatreCategory is the upstream id of the theatre category.
	theatreCategory = "30734"

	// DefaultWeeksAhead is how many weekly queries extend the horizon
	// past the named ranges, roughly two months of coverage.
	DefaultWeeksAhead = 9

	// queryDateLayout is the dd/mm/yyyy format of the "when" parameter.
	queryDateLayout = "02/01/2006"
)

var timePattern = regexp.MustCompile(`(\d{1,2})[.:](\d{2})`)

// Config configures a Fetcher.
type Config struct {
	// Name is the configured source name.
	Name string

	// WeeksAhead overrides DefaultWeeksAhead when positive.
	WeeksAhead int

	// BaseURL overrides DefaultBaseURL, for tests.
	BaseURL string
}

// Fetcher queries the cultura.trentino.it calendar API.
type Fetcher struct {
	name       string
	baseURL    string
	weeksAhead int
	client     *httpx.Client
	clk        clock.Clock
}

// New creates a cultura.trentino.it fetcher.
func New(cfg Config, client *httpx.Client, clk clock.Clock) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.WeeksAhead <= 0 {
		cfg.WeeksAhead = DefaultWeeksAhead
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Fetcher{
		name:       cfg.Name,
		baseURL:    cfg.BaseURL,
		weeksAhead: cfg.WeeksAhead,
		client:     client,
		clk:        clk,
	}
}

// Name returns the configured source name.
func (f *Fetcher) Name() string {
	return f.name
}

// API payload: result.events is a list of day blocks, each split by
// event type, each holding the actual event records.
type payload struct {
	Result struct {
		Events []dayBlock `json:"events"`
	} `json:"result"`
}

type dayBlock struct {
	TipoEvento []tipoEvento `json:"tipo_evento"`
}

type tipoEvento struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Identifier string     `json:"identifier"`
	Orario     string     `json:"orario_svolgimento"`
	Luoghi     []namedRef `json:"luogo_della_cultura"`
	Comuni     []namedRef `json:"comune"`
	Href       string     `json:"href"`
	Iniziative []namedRef `json:"iniziativa"`
}

type namedRef struct {
	Name string `json:"name"`
}

// Fetch walks the named ranges and the weekly horizon and returns the
// deduplicated records. The fetch fails only when every single query
// fails; a partially reachable calendar still yields results.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	queries := []string{"today", "week", "month"}
	start := f.clk.Now().AddDate(0, 0, 7)
	for week := 0; week < f.weeksAhead; week++ {
		queries = append(queries, start.AddDate(0, 0, 7*week).Format(queryDateLayout))
	}

	var (
		events  []domain.RawEvent
		seen    = make(map[int64]bool)
		ok      int
		lastErr error
	)
	for _, when := range queries {
		var p payload
		if err := f.client.GetJSON(ctx, f.queryURL(when), &p); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: query when=%s failed: %v", f.name, when, err)
			lastErr = err
			continue
		}
		ok++

		for _, day := range p.Result.Events {
			for _, tipo := range day.TipoEvento {
				for _, ev := range tipo.Events {
					if seen[ev.ID] {
						continue
					}
					seen[ev.ID] = true

					raw, err := f.parse(ev)
					if err != nil {
						logger.Debug("%s: skipping %q: %v", f.name, ev.Name, err)
						continue
					}
					events = append(events, raw)
				}
			}
		}
	}

	if ok == 0 {
		return nil, fmt.Errorf("all calendar queries failed: %w", lastErr)
	}
	return events, nil
}

func (f *Fetcher) queryURL(when string) string {
	q := url.Values{}
	q.Set("what", theatreCategory)
	q.Set("when", when)
	return f.baseURL + "?" + q.Encode()
}

// parse maps one API record onto a raw event.
func (f *Fetcher) parse(ev apiEvent) (domain.RawEvent, error) {
	title := strings.TrimSpace(ev.Name)
	if title == "" {
		return domain.RawEvent{}, errors.New("missing name")
	}

	date, err := identifierDate(ev.Identifier)
	if err != nil {
		return domain.RawEvent{}, err
	}

	raw := domain.RawEvent{
		Title:      title,
		Date:       date,
		Time:       extractTime(ev.Orario),
		SourceURL:  ev.Href,
		SourceName: f.name,
	}
	if len(ev.Luoghi) > 0 {
		raw.Venue = ev.Luoghi[0].Name
	}
	if len(ev.Comuni) > 0 {
		raw.Location = ev.Comuni[0].Name
	}

	// Programme names plus the raw schedule text make a serviceable
	// description; the API has no dedicated field.
	var parts []string
	for _, iniz := range ev.Iniziative {
		if iniz.Name != "" {
			parts = append(parts, iniz.Name)
		}
	}
	if orario := strings.TrimSpace(ev.Orario); orario != "" {
		parts = append(parts, orario)
	}
	if len(parts) > 0 {
		desc := strings.Join(parts, " | ")
		raw.Description = &desc
	}

	return raw, nil
}

// identifierDate converts the API's unpadded "2026-2-9" identifier to
// an ISO date, rejecting impossible dates.
func identifierDate(identifier string) (string, error) {
	parts := strings.Split(identifier, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed identifier %q", identifier)
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", fmt.Errorf("malformed identifier %q", identifier)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", fmt.Errorf("impossible date in identifier %q", identifier)
	}
	return t.Format(domain.DateLayout), nil
}

// extractTime pulls the first H.MM or H:MM token out of the schedule
// text ("ore 20.30 circa") as a normalised HH:MM, nil when absent.
// Range checking is validation's job, not the parser's.
func extractTime(orario string) *string {
	m := timePattern.FindStringSubmatch(orario)
	if m == nil {
		return nil
	}
	h, _ := strconv.Atoi(m[1])
	t := fmt.Sprintf("%02d:%s", h, m[2])
	return &t
}
