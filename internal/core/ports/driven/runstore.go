package driven

import (
	"context"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// RunStore persists the history of aggregation runs.
type RunStore interface {
	// Record stores one finished run, successful or not.
	Record(ctx context.Context, run domain.RunRecord) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns one run by id. Returns domain.ErrNotFound when the
	// run does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Prune drops all but the newest keep runs.
	Prune(ctx context.Context, keep int) error
}
