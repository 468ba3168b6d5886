// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/helixml/segalloc/infrastructure/persistence"
	"github.com/helixml/segalloc/internal/database"
)

// New returns an in-memory SQLite database with all migrations applied. It
// is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:", logger)
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
