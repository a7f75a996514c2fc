// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - DocumentStore: document and analysis-result persistence
//   - ChatStore: conversation turn persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Analysis results and citations are stored as JSON text columns; chat messages
// cascade on document deletion through a foreign key.
//
// # Data Location
//
// By default, the database is stored at ~/.clearcut/data/clearcut.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. The three partial document updates (fast analysis, deep
// analysis, index state) touch disjoint columns, so concurrent background writers
// never conflict beyond SQLite's own busy handling.
package sqlite
