package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/memory"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

func seedRuns(t *testing.T, store *memory.RunStore, n int) []domain.RunRecord {
	t.Helper()

	base := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	runs := make([]domain.RunRecord, 0, n)
	for i := 0; i < n; i++ {
		run := domain.RunRecord{
			ID:         string(rune('a'+i)) + "-run",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 30*time.Second),
			RawCount:   10 + i,
			EventCount: 8 + i,
		}
		require.NoError(t, store.Record(context.Background(), run))
		runs = append(runs, run)
	}
	return runs
}

func TestNewHistory(t *testing.T) {
	h := NewHistory(memory.NewRunStore())

	require.NotNil(t, h)
}

func TestHistory_Recent(t *testing.T) {
	store := memory.NewRunStore()
	seeded := seedRuns(t, store, 3)
	h := NewHistory(store)

	runs, err := h.Recent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, seeded[2].ID, runs[0].ID, "newest first")
	assert.Equal(t, seeded[1].ID, runs[1].ID)
}

func TestHistory_Recent_NoStore(t *testing.T) {
	h := NewHistory(nil)

	_, err := h.Recent(context.Background(), 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run store not configured")
}

func TestHistory_Get(t *testing.T) {
	store := memory.NewRunStore()
	seeded := seedRuns(t, store, 2)
	h := NewHistory(store)

	run, err := h.Get(context.Background(), seeded[0].ID)

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, seeded[0].RawCount, run.RawCount)
}

func TestHistory_Get_Missing(t *testing.T) {
	h := NewHistory(memory.NewRunStore())

	_, err := h.Get(context.Background(), "no-such-run")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_Get_NoStore(t *testing.T) {
	h := NewHistory(nil)

	_, err := h.Get(context.Background(), "any")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run store not configured")
}
