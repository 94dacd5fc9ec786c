package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/sqlite"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
)

// historyConfig points the CLI at a configuration whose history
// database lives under dir.
func historyConfig(t *testing.T, dir string) {
	t.Helper()
	withConfig(t, fmt.Sprintf(`
history:
  dir: %s
sources:
  - name: Teatro Sociale
    type: culturatrentino
    enabled: true
`, dir))
}

func seedRuns(t *testing.T, dir string, runs ...domain.RunRecord) {
	t.Helper()

	store, err := sqlite.NewStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	for _, run := range runs {
		require.NoError(t, store.RunStore().Record(context.Background(), run))
	}
}

func testRun(id string, start time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:           id,
		StartedAt:    start,
		FinishedAt:   start.Add(3 * time.Second),
		RawCount:     40,
		InvalidCount: 2,
		EventCount:   31,
		Sources: []domain.SourceResult{
			{Source: "Teatro Sociale", Fetched: 25, Invalid: 1, Duration: 900 * time.Millisecond},
			{Source: "Teatro Portland", Fetched: 15, Invalid: 1, Duration: 400 * time.Millisecond},
		},
	}
}

func TestHistoryCmd_NoRuns(t *testing.T) {
	historyConfig(t, t.TempDir())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs recorded yet. Run 'teatrofeed run' first.")
}

func TestHistoryCmd_ListsRunsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	historyConfig(t, dir)

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	older := testRun("0a1b2c3d-0000-4000-8000-aaaaaaaaaaaa", base)
	newer := testRun("0a1b2c3d-0000-4000-8000-bbbbbbbbbbbb", base.Add(time.Hour))
	seedRuns(t, dir, older, newer)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, older.ID)
	assert.Contains(t, out, newer.ID)
	assert.Less(t, strings.Index(out, newer.ID), strings.Index(out, older.ID))
	assert.Contains(t, out, "2/2")
	assert.Contains(t, out, "ok")
}

func TestHistoryCmd_HonoursLimit(t *testing.T) {
	dir := t.TempDir()
	historyConfig(t, dir)

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	older := testRun("0a1b2c3d-0000-4000-8000-cccccccccccc", base)
	newer := testRun("0a1b2c3d-0000-4000-8000-dddddddddddd", base.Add(time.Hour))
	seedRuns(t, dir, older, newer)

	originalLimit := historyLimit
	defer func() { historyLimit = originalLimit }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "list", "--limit", "1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), newer.ID)
	assert.NotContains(t, buf.String(), older.ID)
}

func TestHistoryCmd_ShowRun(t *testing.T) {
	dir := t.TempDir()
	historyConfig(t, dir)

	run := testRun("0a1b2c3d-0000-4000-8000-eeeeeeeeeeee", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	seedRuns(t, dir, run)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", run.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Run "+run.ID)
	assert.Contains(t, out, "Started:")
	assert.Contains(t, out, "Status:   ok")
	assert.Contains(t, out, "31 merged from 40 raw records (2 invalid)")
	assert.Contains(t, out, "25 records, 1 invalid")
}

func TestHistoryCmd_ShowPartialRun(t *testing.T) {
	dir := t.TempDir()
	historyConfig(t, dir)

	run := testRun("0a1b2c3d-0000-4000-8000-ffffffffffff", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	run.Sources = append(run.Sources, domain.SourceResult{
		Source: "Teatro Valle",
		Err:    "connection refused",
	})
	seedRuns(t, dir, run)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "show", run.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Status:   partial")
	assert.Contains(t, out, "failed: connection refused")
}

func TestHistoryCmd_ShowMissingRun(t *testing.T) {
	historyConfig(t, t.TempDir())

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"history", "show", "no-such-run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name string
		run  domain.RunRecord
		want string
	}{
		{
			name: "run level failure",
			run:  domain.RunRecord{Err: "context deadline exceeded"},
			want: "failed",
		},
		{
			name: "one source failed",
			run: domain.RunRecord{Sources: []domain.SourceResult{
				{Source: "a"},
				{Source: "b", Err: "boom"},
			}},
			want: "partial",
		},
		{
			name: "all sources ok",
			run: domain.RunRecord{Sources: []domain.SourceResult{
				{Source: "a"},
				{Source: "b"},
			}},
			want: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runStatus(tt.run))
		})
	}
}
