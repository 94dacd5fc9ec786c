package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/teatrofeed/teatrofeed/internal/core/domain"
	"github.com/teatrofeed/teatrofeed/internal/core/ports/driven"
)

// Store is the SQLite-backed run-history database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the run-history database at dbPath, creating the file
// and its directory when missing, and applies any pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for concurrency, foreign keys for the run_sources
	// cascade. Pragmas go in the DSN so every pooled connection gets
	// them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g. "0001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Record stores one finished run and its per-source outcomes.
func (s *runStore) Record(ctx context.Context, run domain.RunRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, raw_count, invalid_count, event_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.RawCount, run.InvalidCount, run.EventCount, run.Err)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_sources (run_id, position, source, fetched, invalid, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, src := range run.Sources {
		if _, err := stmt.ExecContext(ctx, run.ID, i, src.Source,
			src.Fetched, src.Invalid, src.Duration.Milliseconds(), src.Err); err != nil {
			return fmt.Errorf("inserting source result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit
// returns every recorded run.
func (s *runStore) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, raw_count, invalid_count, event_count, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var run domain.RunRecord
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.RawCount, &run.InvalidCount, &run.EventCount, &run.Err); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		sources, err := s.sources(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Sources = sources
	}

	return runs, nil
}

// Get returns one run by id.
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, raw_count, invalid_count, event_count, error
		FROM runs WHERE id = ?
	`, id)

	var run domain.RunRecord
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.RawCount, &run.InvalidCount, &run.EventCount, &run.Err); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	sources, err := s.sources(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Sources = sources

	return &run, nil
}

// Prune drops all but the newest keep runs. The run_sources rows
// follow through the foreign key cascade.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning runs: %w", err)
	}
	return nil
}

// sources loads the per-source outcomes for one run, in the order the
// run recorded them.
func (s *runStore) sources(ctx context.Context, runID string) ([]domain.SourceResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source, fetched, invalid, duration_ms, error
		FROM run_sources WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying source results: %w", err)
	}
	defer rows.Close()

	var results []domain.SourceResult
	for rows.Next() {
		var r domain.SourceResult
		var durationMS int64
		if err := rows.Scan(&r.Source, &r.Fetched, &r.Invalid, &durationMS, &r.Err); err != nil {
			return nil, fmt.Errorf("scanning source result: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source results: %w", err)
	}

	return results, nil
}
