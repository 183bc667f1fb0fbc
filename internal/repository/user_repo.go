package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mindmap-server/internal/database"
	"github.com/mindmap-server/internal/models"
)

const userColumns = `id, username, password_hash, display_name, is_admin, created_at, updated_at`

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, display_name, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		user.ID, user.Username, user.PasswordHash, user.DisplayName, boolToInt(user.IsAdmin),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByUsername retrieves a user by username
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.getOne(ctx, query, username)
}

func (r *userRepo) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, r.db.Rebind(query), arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UsernameExists checks if a user with the given username exists
func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)"), username).Scan(&exists)
	return exists, err
}

// List returns every user ordered by username
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update writes the mutable user fields
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET password_hash = ?, display_name = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		user.PasswordHash, user.DisplayName, boolToInt(user.IsAdmin), user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteCascade removes a non-admin user with their maps, folders and
// sessions in one transaction. Returns false when no such user was deleted.
func (r *userRepo) DeleteCascade(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var isAdmin int
		err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT is_admin FROM users WHERE id = ?`), id).Scan(&isAdmin)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if isAdmin != 0 {
			return nil
		}

		for _, stmt := range []string{
			`DELETE FROM maps WHERE user_id = ?`,
			`DELETE FROM folders WHERE user_id = ?`,
			`DELETE FROM sessions WHERE user_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.db.Rebind(stmt), id); err != nil {
				return fmt.Errorf("failed to delete owned rows: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ? AND is_admin = 0`), id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
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

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var displayName sql.NullString
	var isAdmin sql.NullInt64
	var createdAt, updatedAt sql.NullInt64

	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &displayName, &isAdmin,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName.String
	user.IsAdmin = isAdmin.Int64 != 0
	user.CreatedAt = createdAt.Int64
	user.UpdatedAt = updatedAt.Int64
	return &user, nil
}
