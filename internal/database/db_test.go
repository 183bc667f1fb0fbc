package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mindmap-server/internal/config"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, filepath.Join(t.TempDir(), "fresh.db"))

	for i := 0; i < 2; i++ {
		if err := db.RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations run %d failed: %v", i+1, err)
		}
	}

	cols, err := db.columns(ctx, "maps")
	if err != nil {
		t.Fatalf("columns failed: %v", err)
	}
	for _, name := range []string{"id", "title", "data", "created_at", "updated_at", "folder_id", "trashed", "user_id"} {
		if !cols[name] {
			t.Errorf("maps.%s should exist", name)
		}
	}

	for _, table := range []string{"users", "folders", "sessions"} {
		cols, err := db.columns(ctx, table)
		if err != nil {
			t.Fatalf("columns(%s) failed: %v", table, err)
		}
		if len(cols) == 0 {
			t.Errorf("Table %s should exist", table)
		}
	}
}

func TestRunMigrations_UpgradesLegacyDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Shape written by the single-user server: no ownership, folders or trash
	legacy, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE maps (id TEXT PRIMARY KEY, title TEXT, data TEXT, created_at INTEGER, updated_at INTEGER)`,
		`INSERT INTO maps (id, title, data, created_at, updated_at) VALUES ('map-legacy', 'Old', '{}', 1, 2)`,
	} {
		if _, err := legacy.Exec(stmt); err != nil {
			t.Fatalf("Legacy setup failed: %v", err)
		}
	}
	legacy.Close()

	db := openTestDB(t, path)
	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	var title string
	var userID sql.NullString
	var trashed sql.NullInt64
	err = db.QueryRowContext(ctx, `SELECT title, user_id, trashed FROM maps WHERE id = 'map-legacy'`).
		Scan(&title, &userID, &trashed)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if title != "Old" {
		t.Errorf("Expected title Old, got %q", title)
	}
	if userID.Valid {
		t.Error("Legacy rows stay orphaned until provisioning")
	}
	if trashed.Valid && trashed.Int64 != 0 {
		t.Error("Legacy rows must not be trashed")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		query  string
		want   string
	}{
		{
			config.DriverPostgres,
			"UPDATE maps SET trashed = ? WHERE id = ? AND user_id = ?",
			"UPDATE maps SET trashed = $1 WHERE id = $2 AND user_id = $3",
		},
		{config.DriverSQLite, "SELECT 1 WHERE a = ?", "SELECT 1 WHERE a = ?"},
	}
	for _, tt := range tests {
		db := &DB{driver: tt.driver}
		if got := db.Rebind(tt.query); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.driver, tt.want, got)
		}
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, filepath.Join(t.TempDir(), "tx.db"))
	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	sentinel := errors.New("abort")
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO folders (id, name, user_id) VALUES ('f1', 'n', 'u')`); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders`).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback, found %d folders", count)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "health.db"))
	if db.Driver() != config.DriverSQLite {
		t.Errorf("Expected driver %s, got %s", config.DriverSQLite, db.Driver())
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	db.Close()
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail on a closed database")
	}
}
