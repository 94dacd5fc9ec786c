package services

import (
	"context"
	"fmt"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driving"
)

// Ensure History implements the interface.
var _ driving.RunHistory = (*History)(nil)

// History exposes recorded runs to the driving adapters.
type History struct {
	runs driven.RunStore
}

// NewHistory creates a run-history service.
func NewHistory(runs driven.RunStore) *History {
	return &History{runs: runs}
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if h.runs == nil {
		return nil, fmt.Errorf("run store not configured")
	}
	return h.runs.Recent(ctx, limit)
}

// Get returns one run by id.
func (h *History) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if h.runs == nil {
		return nil, fmt.Errorf("run store not configured")
	}
	return h.runs.Get(ctx, id)
}
