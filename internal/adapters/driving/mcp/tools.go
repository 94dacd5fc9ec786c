package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// defaultLimit caps tool output when the caller does not ask for a size.
const defaultLimit = 20

// ListEventsInput is the input schema for the list_events tool.
type ListEventsInput struct {
	IncludePast bool `json:"include_past,omitempty" jsonschema:"include events whose date has already passed (default false)"`
	Limit       int  `json:"limit,omitempty" jsonschema:"maximum number of events to return (default 20)"`
}

// SearchEventsInput is the input schema for the search_events tool.
type SearchEventsInput struct {
	Query string `json:"query" jsonschema:"text to match against event titles, venues, locations and descriptions"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of events to return (default 20)"`
}

// EventsOutput is the output schema shared by both tools.
type EventsOutput struct {
	Events []EventOutput `json:"events"`
	Count  int           `json:"count"`
}

// EventOutput is one feed event as presented to the assistant.
type EventOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Venue       string   `json:"venue"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	SourceURLs  []string `json:"source_urls"`
	IsPast      bool     `json:"is_past"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_events",
		Description: "List upcoming theatre events from the aggregated feed",
	}, s.handleListEvents)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_events",
		Description: "Search theatre events by title, venue, location or description",
	}, s.handleSearchEvents)
}

// handleListEvents handles the list_events tool invocation. The feed
// is already sorted by date, so the first events are the nearest.
func (s *Server) handleListEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEventsInput,
) (*mcp.CallToolResult, EventsOutput, error) {
	doc, err := s.ports.Reader.Current(ctx)
	if err != nil {
		return nil, EventsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	output := EventsOutput{Events: []EventOutput{}}
	for _, ev := range doc.Events {
		if ev.IsPast && !input.IncludePast {
			continue
		}
		output.Events = append(output.Events, toEventOutput(ev))
		if len(output.Events) == limit {
			break
		}
	}
	output.Count = len(output.Events)

	return nil, output, nil
}

// handleSearchEvents handles the search_events tool invocation.
// Matching is accent and case insensitive, so "arditodesio" finds
// "Arditodesìo".
func (s *Server) handleSearchEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchEventsInput,
) (*mcp.CallToolResult, EventsOutput, error) {
	doc, err := s.ports.Reader.Current(ctx)
	if err != nil {
		return nil, EventsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := domain.Normalise(input.Query)
	output := EventsOutput{Events: []EventOutput{}}
	for _, ev := range doc.Events {
		if query != "" && !eventMatches(ev, query) {
			continue
		}
		output.Events = append(output.Events, toEventOutput(ev))
		if len(output.Events) == limit {
			break
		}
	}
	output.Count = len(output.Events)

	return nil, output, nil
}

// eventMatches reports whether a normalised query occurs in any of the
// event's text fields.
func eventMatches(ev domain.CanonicalEvent, query string) bool {
	if strings.Contains(domain.Normalise(ev.Title), query) ||
		strings.Contains(domain.Normalise(ev.Venue), query) ||
		strings.Contains(domain.Normalise(ev.Location), query) {
		return true
	}
	return ev.Description != nil && strings.Contains(domain.Normalise(*ev.Description), query)
}

func toEventOutput(ev domain.CanonicalEvent) EventOutput {
	out := EventOutput{
		ID:         ev.ID,
		Title:      ev.Title,
		Date:       ev.Date,
		Venue:      ev.Venue,
		Location:   ev.Location,
		SourceURLs: ev.SourceURLs,
		IsPast:     ev.IsPast,
	}
	if ev.Time != nil {
		out.Time = *ev.Time
	}
	if ev.Description != nil {
		out.Description = *ev.Description
	}
	return out
}
