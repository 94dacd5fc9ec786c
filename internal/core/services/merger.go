package services

import (
	"math"
	"unicode/utf8"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// unranked is the priority rank of sources missing from the configured
// priority list. Any listed source outranks every unlisted one.
const unranked = math.MaxInt

// Merger collapses a match-group into one canonical event, unioning
// attribution. Field selection is deterministic, and the fields that
// feed the identity fingerprint are chosen order-independently so a
// group's id never depends on which source happened to be fetched
// first.
type Merger struct {
	rank map[string]int
}

// NewMerger creates a merger. priority is the ordered list of source
// names, most authoritative first, that settles title and spelling
// contests; it normally comes from the run configuration.
func NewMerger(priority []string) *Merger {
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}
	return &Merger{rank: rank}
}

// sourceRank returns the priority rank of a source, lower meaning more
// authoritative.
func (m *Merger) sourceRank(name string) int {
	if r, ok := m.rank[name]; ok {
		return r
	}
	return unranked
}

// Merge produces the canonical event for one non-empty match-group.
// A singleton group merges trivially into a canonical event with
// singleton attribution lists.
func (m *Merger) Merge(group []domain.RawEvent) domain.CanonicalEvent {
	title := m.chooseTitle(group)
	venue := m.chooseSpelling(group, func(e domain.RawEvent) string { return e.Venue })
	location := m.chooseSpelling(group, func(e domain.RawEvent) string { return e.Location })

	normVenue := domain.Normalise(venue)
	ev := domain.CanonicalEvent{
		ID:          domain.Fingerprint(group[0].Date, normVenue, domain.Normalise(title)),
		Title:       title,
		Date:        group[0].Date,
		Venue:       venue,
		Location:    location,
		Description: longestText(group),
		Time:        firstTime(group),
		ImageURL:    firstImage(group),
	}

	// Ordered attribution union: first seen first, no duplicates.
	seenURL := make(map[string]bool, len(group))
	seenName := make(map[string]bool, len(group))
	for _, member := range group {
		if member.SourceURL != "" && !seenURL[member.SourceURL] {
			seenURL[member.SourceURL] = true
			ev.SourceURLs = append(ev.SourceURLs, member.SourceURL)
		}
		if member.SourceName != "" && !seenName[member.SourceName] {
			seenName[member.SourceName] = true
			ev.SourceNames = append(ev.SourceNames, member.SourceName)
		}
	}
	return ev
}

// chooseTitle selects the canonical title: members of the
// highest-priority source present in the group, or every member when
// none of their sources is ranked; of those, the longest title, ties
// resolved lexicographically so the choice is stable under input
// permutation.
func (m *Merger) chooseTitle(group []domain.RawEvent) string {
	best := unranked
	for _, member := range group {
		if r := m.sourceRank(member.SourceName); r < best {
			best = r
		}
	}

	title := ""
	length := -1
	for _, member := range group {
		if m.sourceRank(member.SourceName) != best {
			continue
		}
		l := utf8.RuneCountInString(member.Title)
		if l > length || (l == length && member.Title < title) {
			title = member.Title
			length = l
		}
	}
	return title
}

// chooseSpelling picks the raw spelling of a field whose normalised
// value is already equal across the group (venue) or advisory
// (location): longest non-empty value, ties broken by source priority,
// then by first-seen order.
func (m *Merger) chooseSpelling(group []domain.RawEvent, field func(domain.RawEvent) string) string {
	chosen := ""
	length := 0
	rank := unranked
	for _, member := range group {
		v := field(member)
		l := utf8.RuneCountInString(v)
		if l == 0 {
			continue
		}
		r := m.sourceRank(member.SourceName)
		if l > length || (l == length && r < rank) {
			chosen = v
			length = l
			rank = r
		}
	}
	return chosen
}

// longestText returns the longest non-empty description in the group,
// or nil when no member offers one. First-seen wins among equals.
func longestText(group []domain.RawEvent) *string {
	var chosen *string
	length := 0
	for _, member := range group {
		if member.Description == nil {
			continue
		}
		if l := utf8.RuneCountInString(*member.Description); l > length {
			chosen = member.Description
			length = l
		}
	}
	return chosen
}

// firstTime returns the first non-absent time in group order.
func firstTime(group []domain.RawEvent) *string {
	for _, member := range group {
		if member.Time != nil {
			return member.Time
		}
	}
	return nil
}

// firstImage returns the first non-absent image URL in group order.
func firstImage(group []domain.RawEvent) *string {
	for _, member := range group {
		if member.ImageURL != nil {
			return member.ImageURL
		}
	}
	return nil
}
