package database

import (
	"context"
	"fmt"

	"github.com/mindmap-server/internal/config"
)

// column describes a column that older schemas may be missing
type column struct {
	table      string
	name       string
	sqliteType string
	pgType     string
}

// additiveColumns are added when absent. Databases written before folders,
// trash and ownership existed only carry the original maps columns.
var additiveColumns = []column{
	{"maps", "folder_id", "TEXT", "TEXT"},
	{"maps", "trashed", "INTEGER DEFAULT 0", "INTEGER DEFAULT 0"},
	{"maps", "user_id", "TEXT", "TEXT"},
	{"folders", "user_id", "TEXT", "TEXT"},
	{"users", "display_name", "TEXT", "TEXT"},
	{"users", "is_admin", "INTEGER NOT NULL DEFAULT 0", "INTEGER NOT NULL DEFAULT 0"},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_maps_user_updated ON maps(user_id, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_maps_folder ON maps(folder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_folders_user ON folders(user_id)`,
}

// EnsureColumns adds missing columns and indexes. Safe to run repeatedly.
func (db *DB) EnsureColumns(ctx context.Context) error {
	existing := make(map[string]map[string]bool)

	for _, col := range additiveColumns {
		cols, ok := existing[col.table]
		if !ok {
			var err error
			cols, err = db.columns(ctx, col.table)
			if err != nil {
				return err
			}
			existing[col.table] = cols
		}
		if cols[col.name] {
			continue
		}

		colType := col.sqliteType
		if db.driver == config.DriverPostgres {
			colType = col.pgType
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", col.table, col.name, colType)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", col.table, col.name, err)
		}
		cols[col.name] = true

		db.log.Info().Str("table", col.table).Str("column", col.name).Msg("Added missing column")
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// columns lists the column names of table
func (db *DB) columns(ctx context.Context, table string) (map[string]bool, error) {
	query := `SELECT name FROM pragma_table_info(?)`
	if db.driver == config.DriverPostgres {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ?`
	}

	rows, err := db.QueryContext(ctx, db.Rebind(query), table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
