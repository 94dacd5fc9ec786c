package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// newTestStore creates a store backed by a database in a test
// directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// testRun builds a run record with two source outcomes, one of them
// failed.
func testRun(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:           id,
		StartedAt:    started,
		FinishedAt:   started.Add(3 * time.Second),
		RawCount:     12,
		InvalidCount: 1,
		EventCount:   8,
		Sources: []domain.SourceResult{
			{Source: "comune-trento", Fetched: 12, Invalid: 1, Duration: 1200 * time.Millisecond},
			{Source: "teatro-sociale", Duration: 400 * time.Millisecond, Err: "fetching events page 1: 503"},
		},
	}
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "nested", "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have applied at least one migration")
}

func TestNewStore_InvalidPath(t *testing.T) {
	_, err := NewStore("/invalid\x00path/history.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	run := testRun("run-1", time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, store.RunStore().Record(ctx, run))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.EventCount)
}

func TestRunStore_Record_RoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, store.RunStore().Record(ctx, run))

	got, err := store.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(run.StartedAt), "started at: got %v", got.StartedAt)
	assert.True(t, got.FinishedAt.Equal(run.FinishedAt), "finished at: got %v", got.FinishedAt)
	assert.Equal(t, run.RawCount, got.RawCount)
	assert.Equal(t, run.InvalidCount, got.InvalidCount)
	assert.Equal(t, run.EventCount, got.EventCount)
	assert.Empty(t, got.Err)

	require.Len(t, got.Sources, 2)
	assert.Equal(t, run.Sources[0], got.Sources[0])
	assert.Equal(t, run.Sources[1], got.Sources[1])
	assert.Equal(t, 1, got.SourcesFailed())
}

func TestRunStore_Record_FailedRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC))
	run.Err = "all sources failed: context deadline exceeded"
	run.EventCount = 0
	require.NoError(t, store.RunStore().Record(ctx, run))

	got, err := store.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.Err, got.Err)
	assert.Zero(t, got.EventCount)
}

func TestRunStore_Record_NoSources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := domain.RunRecord{
		ID:         "run-1",
		StartedAt:  time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 2, 1, 6, 0, 1, 0, time.UTC),
	}
	require.NoError(t, store.RunStore().Record(ctx, run))

	got, err := store.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, got.Sources)
}

func TestRunStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RunStore().Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_Recent_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.RunStore().Record(ctx, run))
	}

	got, err := store.RunStore().Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-3", got[0].ID)
	assert.Equal(t, "run-2", got[1].ID)
	require.Len(t, got[0].Sources, 2, "recent runs carry their source outcomes")
	assert.Equal(t, "comune-trento", got[0].Sources[0].Source)
}

func TestRunStore_Recent_NoLimitReturnsAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.RunStore().Record(ctx, run))
	}

	got, err := store.RunStore().Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRunStore_Recent_Empty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.RunStore().Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunStore_Prune_KeepsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)

	for i := 1; i <= 4; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.RunStore().Record(ctx, run))
	}

	require.NoError(t, store.RunStore().Prune(ctx, 2))

	got, err := store.RunStore().Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-4", got[0].ID)
	assert.Equal(t, "run-3", got[1].ID)

	_, err = store.RunStore().Get(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The cascade must remove the pruned runs' source rows too.
	var orphans int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM run_sources
		WHERE run_id NOT IN (SELECT id FROM runs)
	`).Scan(&orphans)
	require.NoError(t, err)
	assert.Zero(t, orphans)
}

func TestRunStore_Prune_ZeroDropsAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, store.RunStore().Record(ctx, run))

	require.NoError(t, store.RunStore().Prune(ctx, 0))

	got, err := store.RunStore().Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
