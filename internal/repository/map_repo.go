package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindmap-server/internal/database"
	"github.com/mindmap-server/internal/models"
)

// summaryColumns are selected for listings; data is left out
const summaryColumns = `id, title, folder_id, trashed, user_id, created_at, updated_at`

// notTrashed treats legacy NULL as not trashed
const notTrashed = `COALESCE(trashed, 0) = 0`

// mapRepo is the concrete implementation of MapRepository
type mapRepo struct {
	db *database.DB
}

// NewMapRepo creates a new map repository
func NewMapRepo(db *database.DB) MapRepository {
	return &mapRepo{db: db}
}

// Create inserts a new map
func (r *mapRepo) Create(ctx context.Context, m *models.MindMap) error {
	query := `
		INSERT INTO maps (id, title, data, folder_id, trashed, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		m.ID, m.Title, string(m.Data), nullString(m.FolderID), boolToInt(m.Trashed),
		nullString(m.UserID), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create map: %w", err)
	}
	return nil
}

// GetByID retrieves a map with its document
func (r *mapRepo) GetByID(ctx context.Context, id string) (*models.MindMap, error) {
	query := `SELECT ` + summaryColumns + `, data FROM maps WHERE id = ?`

	m, err := scanMap(r.db.QueryRowContext(ctx, r.db.Rebind(query), id), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get map: %w", err)
	}
	return m, nil
}

// UpdateContent replaces title and document; owner, folder and created_at are untouched
func (r *mapRepo) UpdateContent(ctx context.Context, id, title string, data json.RawMessage, updatedAt int64) error {
	query := `UPDATE maps SET title = ?, data = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), title, string(data), updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update map: %w", err)
	}
	return nil
}

// List returns the user's maps matching filter, newest first, without documents
func (r *mapRepo) List(ctx context.Context, userID string, filter models.MapFilter) ([]*models.MindMap, error) {
	query := `SELECT ` + summaryColumns + ` FROM maps WHERE user_id = ?`
	args := []interface{}{userID}

	switch filter.Kind {
	case models.FilterTrashed:
		query += ` AND COALESCE(trashed, 0) <> 0`
	case models.FilterRoot:
		query += ` AND ` + notTrashed + ` AND folder_id IS NULL`
	case models.FilterFolder:
		query += ` AND ` + notTrashed + ` AND folder_id = ?`
		args = append(args, filter.FolderID)
	default:
		query += ` AND ` + notTrashed
	}
	query += ` ORDER BY updated_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	maps := make([]*models.MindMap, 0)
	for rows.Next() {
		m, err := scanMap(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// Delete performs a hard delete of a map
func (r *mapRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.exec(ctx, `DELETE FROM maps WHERE id = ?`, id)
}

// SetTrashed flips the trash flag on a map owned by userID
func (r *mapRepo) SetTrashed(ctx context.Context, id, userID string, trashed bool) (bool, error) {
	return r.exec(ctx, `UPDATE maps SET trashed = ? WHERE id = ? AND user_id = ?`,
		boolToInt(trashed), id, userID)
}

// Move reassigns the folder of a map owned by userID; nil moves it to root
func (r *mapRepo) Move(ctx context.Context, id, userID string, folderID *string) (bool, error) {
	return r.exec(ctx, `UPDATE maps SET folder_id = ? WHERE id = ? AND user_id = ?`,
		nullString(folderID), id, userID)
}

// AssignOrphans gives every map without an owner to userID
func (r *mapRepo) AssignOrphans(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE maps SET user_id = ? WHERE user_id IS NULL`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign orphan maps: %w", err)
	}
	return result.RowsAffected()
}

// StreamByUser streams the user's non-trashed maps with documents (memory efficient)
func (r *mapRepo) StreamByUser(ctx context.Context, userID string, callback func(*models.MindMap) error) error {
	query := `SELECT ` + summaryColumns + `, data FROM maps WHERE user_id = ? AND ` + notTrashed +
		` ORDER BY updated_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return fmt.Errorf("failed to stream maps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMap(rows, true)
		if err != nil {
			return fmt.Errorf("failed to scan map: %w", err)
		}
		if err := callback(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the total number of maps
func (r *mapRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM maps").Scan(&count)
	return count, err
}

func (r *mapRepo) exec(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to update map: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func scanMap(row rowScanner, withData bool) (*models.MindMap, error) {
	var m models.MindMap
	var title, folderID, userID, data sql.NullString
	var trashed, createdAt, updatedAt sql.NullInt64

	dest := []interface{}{&m.ID, &title, &folderID, &trashed, &userID, &createdAt, &updatedAt}
	if withData {
		dest = append(dest, &data)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	m.Title = title.String
	if folderID.Valid {
		m.FolderID = &folderID.String
	}
	if userID.Valid {
		m.UserID = &userID.String
	}
	m.Trashed = trashed.Int64 != 0
	m.CreatedAt = createdAt.Int64
	m.UpdatedAt = updatedAt.Int64
	if withData {
		if data.Valid && data.String != "" {
			m.Data = json.RawMessage(data.String)
		} else {
			m.Data = json.RawMessage("null")
		}
	}
	return &m, nil
}
