// Package testutil provides shared fixtures for storage-backed tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/database"
	"github.com/rs/zerolog"
)

// NewDB opens a migrated SQLite database in a temporary directory.
// It is closed when the test finishes.
func NewDB(tb testing.TB) *database.DB {
	tb.Helper()

	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(tb.TempDir(), "mindmap_test.db"),
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		tb.Fatalf("Failed to open test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background()); err != nil {
		tb.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
