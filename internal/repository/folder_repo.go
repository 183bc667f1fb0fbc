package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mindmap-server/internal/database"
	"github.com/mindmap-server/internal/models"
)

// folderRepo is the concrete implementation of FolderRepository
type folderRepo struct {
	db *database.DB
}

// NewFolderRepo creates a new folder repository
func NewFolderRepo(db *database.DB) FolderRepository {
	return &folderRepo{db: db}
}

// Create inserts a new folder
func (r *folderRepo) Create(ctx context.Context, folder *models.Folder) error {
	query := `INSERT INTO folders (id, name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		folder.ID, folder.Name, nullString(folder.UserID), folder.CreatedAt, folder.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *folderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT id, name, user_id, created_at, updated_at FROM folders WHERE id = ?`

	folder, err := scanFolder(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return folder, nil
}

// ListByUser returns the user's folders ordered by name
func (r *folderRepo) ListByUser(ctx context.Context, userID string) ([]*models.Folder, error) {
	query := `SELECT id, name, user_id, created_at, updated_at FROM folders WHERE user_id = ? ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]*models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// Rename renames a folder owned by userID
func (r *folderRepo) Rename(ctx context.Context, id, userID, name string, updatedAt int64) (bool, error) {
	query := `UPDATE folders SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), name, updatedAt, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to rename folder: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteAndReparent moves the user's maps in the folder to root, then deletes
// the folder, in one transaction. Both steps are scoped to userID.
func (r *folderRepo) DeleteAndReparent(ctx context.Context, id, userID string) (bool, error) {
	deleted := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			r.db.Rebind(`UPDATE maps SET folder_id = NULL WHERE folder_id = ? AND user_id = ?`), id, userID)
		if err != nil {
			return fmt.Errorf("failed to reparent maps: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			r.db.Rebind(`DELETE FROM folders WHERE id = ? AND user_id = ?`), id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	return deleted, err
}

// AssignOrphans gives every folder without an owner to userID
func (r *folderRepo) AssignOrphans(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE folders SET user_id = ? WHERE user_id IS NULL`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign orphan folders: %w", err)
	}
	return result.RowsAffected()
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var userID sql.NullString
	var createdAt, updatedAt sql.NullInt64

	if err := row.Scan(&folder.ID, &folder.Name, &userID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		folder.UserID = &userID.String
	}
	folder.CreatedAt = createdAt.Int64
	folder.UpdatedAt = updatedAt.Int64
	return &folder, nil
}
