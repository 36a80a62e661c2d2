package database

import (
	"context"
	"testing"
)

// OpenTestDB opens a migrated in-memory SQLite database closed at test cleanup.
func OpenTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := Open(context.Background(), Options{Driver: "sqlite3", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
