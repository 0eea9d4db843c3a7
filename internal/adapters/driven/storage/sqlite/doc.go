// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements the store interfaces
// through a single database connection:
//
//   - GoalStore: append-only goal versions
//   - FoodLogStore: the append-only intake ledger
//   - ProfileStore: user profiles
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Instants are stored as UTC Unix nanoseconds so range scans compare integers.
//
// # Data Location
//
// By default, the database is stored at ~/.nutrisense/data/nutrisense.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
