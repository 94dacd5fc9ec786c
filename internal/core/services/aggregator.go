package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driving"
	"github.com/teatrofeed/teatrofeed/internal/logger"
)

// Ensure Aggregator implements the interface.
var _ driving.FeedAggregator = (*Aggregator)(nil)

// Aggregator drives one batch aggregation run: concurrent fetches,
// validation, matching, merging and document assembly. It holds no
// state between runs; every run recomputes the canonical set from
// scratch.
type Aggregator struct {
	fetchers []driven.Fetcher
	matcher  *Matcher
	merger   *Merger
	runs     driven.RunStore
	clk      clock.Clock
}

// NewAggregator creates an aggregator over the given fetchers.
// The runs store is optional - when nil, run history is not recorded.
func NewAggregator(
	fetchers []driven.Fetcher,
	matcher *Matcher,
	merger *Merger,
	runs driven.RunStore,
	clk clock.Clock,
) *Aggregator {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Aggregator{
		fetchers: fetchers,
		matcher:  matcher,
		merger:   merger,
		runs:     runs,
		clk:      clk,
	}
}

// fetchResult is one fetcher's outcome, slotted by configuration index
// so collection order never depends on goroutine scheduling.
type fetchResult struct {
	events []domain.RawEvent
	err    error
	took   time.Duration
}

// Run executes the pipeline once.
func (a *Aggregator) Run(ctx context.Context) (*domain.FeedDocument, *domain.RunRecord, error) {
	run := &domain.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: a.clk.Now().UTC(),
	}

	if len(a.fetchers) == 0 {
		run.Err = domain.ErrNoSources.Error()
		run.FinishedAt = a.clk.Now().UTC()
		a.record(ctx, run)
		return nil, run, domain.ErrNoSources
	}

	// 1. Fetch every source concurrently. Each fetcher owns its own
	// timeout and retry policy; the wait is the synchronisation barrier
	// between the I/O phase and the pure transform.
	logger.Section("Fetching sources")
	results := make([]fetchResult, len(a.fetchers))
	var wg sync.WaitGroup
	for i, f := range a.fetchers {
		wg.Add(1)
		go func(i int, f driven.Fetcher) {
			defer wg.Done()
			start := time.Now()
			events, err := f.Fetch(ctx)
			results[i] = fetchResult{events: events, err: err, took: time.Since(start)}
		}(i, f)
	}
	wg.Wait()

	// 2. Collect in configuration order, recovering per-source failures
	// and dropping (but counting) invalid records.
	var raws []domain.RawEvent
	var causes []error
	for i, f := range a.fetchers {
		res := results[i]
		sr := domain.SourceResult{Source: f.Name(), Duration: res.took}

		if res.err != nil {
			ferr := &domain.FetchError{Source: f.Name(), Err: res.err}
			logger.Warn("%v", ferr)
			sr.Err = res.err.Error()
			causes = append(causes, ferr)
		} else {
			sr.Fetched = len(res.events)
			for _, ev := range res.events {
				if verr := ev.Validate(); verr != nil {
					sr.Invalid++
					logger.Debug("dropping record: %v", verr)
					continue
				}
				raws = append(raws, ev)
			}
			logger.Info("%s: %d records (%d invalid)", f.Name(), sr.Fetched, sr.Invalid)
		}

		run.Sources = append(run.Sources, sr)
		run.RawCount += sr.Fetched
		run.InvalidCount += sr.Invalid
	}

	// 3. Total source failure is a run-level error: zero events from a
	// blackout must never masquerade as a legitimately empty feed.
	if len(causes) == len(a.fetchers) {
		err := fmt.Errorf("%w: %w", domain.ErrAllSourcesFailed, errors.Join(causes...))
		run.Err = err.Error()
		run.FinishedAt = a.clk.Now().UTC()
		a.record(ctx, run)
		return nil, run, err
	}

	// 4. Deduplicate: bucket, match, merge. Single-threaded and pure.
	logger.Section("Merging")
	groups := a.matcher.Group(raws)
	events := make([]domain.CanonicalEvent, 0, len(groups))
	for _, group := range groups {
		events = append(events, a.merger.Merge(group))
	}
	logger.Info("%d raw records merged into %d events", len(raws), len(events))

	// 5. Order the feed and stamp it.
	sortEvents(events)

	now := a.clk.Now().UTC()
	doc := &domain.FeedDocument{
		LastUpdated: now.Format(time.RFC3339),
		Count:       len(events),
		Events:      events,
	}
	doc.RefreshPast(now)

	run.EventCount = len(events)
	run.FinishedAt = a.clk.Now().UTC()
	a.record(ctx, run)
	return doc, run, nil
}

// record persists the run when a store is configured. Recording
// trouble degrades to a warning; history must never fail a run.
func (a *Aggregator) record(ctx context.Context, run *domain.RunRecord) {
	if a.runs == nil {
		return
	}
	if err := a.runs.Record(ctx, *run); err != nil {
		logger.Warn("recording run %s: %v", run.ID, err)
	}
}

// sortEvents orders the feed ascending by date, then time with
// untimed events after timed ones on the same date, then normalised
// title, with the id as a final deterministic tie-break.
func sortEvents(events []domain.CanonicalEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		switch {
		case a.Time == nil && b.Time != nil:
			return false
		case a.Time != nil && b.Time == nil:
			return true
		case a.Time != nil && b.Time != nil && *a.Time != *b.Time:
			return *a.Time < *b.Time
		}
		na, nb := domain.Normalise(a.Title), domain.Normalise(b.Title)
		if na != nb {
			return na < nb
		}
		return a.ID < b.ID
	})
}
