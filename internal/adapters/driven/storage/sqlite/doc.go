// Package sqlite persists the run history in a SQLite database.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, so the binary cross-compiles cleanly. The
// schema is managed through versioned migrations embedded in the
// migrations/ directory; NewStore applies pending migrations on open.
//
// Each aggregation run becomes one row in the runs table plus one row
// per source in run_sources, keyed to the run and removed with it.
// By default the database lives at ~/.teatrofeed/history.db.
//
// All operations are safe for concurrent use. The store relies on the
// database-level locking SQLite provides in WAL mode.
package sqlite
