package driven

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// Fetcher yields the raw event records of one configured source.
//
// The aggregator treats every implementation uniformly regardless of
// transport (REST+JSON, HTML with embedded structured data, a calendar
// API, a local file). Implementations own their timeout and retry
// policy; the context carries run-level cancellation.
//
// A Fetcher returns an error only when the source as a whole is
// unusable. Individual records it cannot interpret are skipped, not
// failed: partial results are better than none.
type Fetcher interface {
	// Name returns the configured source name, normally the domain
	// (e.g. "cultura.trentino.it"). It becomes the SourceName of every
	// record the fetcher yields.
	Name() string

	// Fetch retrieves the source's current listings.
	Fetch(ctx context.Context) ([]domain.RawEvent, error)
}
