package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mindmap-server/internal/database"
	"github.com/mindmap-server/internal/models"
)

// sessionRepo stores sessions in the sessions table. Raw tokens never reach it.
type sessionRepo struct {
	db *database.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *database.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Save(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (token_hash, user_id, issued_at, last_seen_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		session.TokenHash, session.UserID, session.IssuedAt, session.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `SELECT token_hash, user_id, issued_at, last_seen_at FROM sessions WHERE token_hash = ?`

	var s models.Session
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), tokenHash).Scan(
		&s.TokenHash, &s.UserID, &s.IssuedAt, &s.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) Touch(ctx context.Context, tokenHash string, lastSeenAt int64) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE sessions SET last_seen_at = ? WHERE token_hash = ?`), lastSeenAt, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE token_hash = ?`), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions idle since before lastSeenBefore
func (r *sessionRepo) DeleteExpired(ctx context.Context, lastSeenBefore int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM sessions WHERE last_seen_at < ?`), lastSeenBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
