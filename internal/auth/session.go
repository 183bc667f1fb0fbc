package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mindmap-server/internal/models"
	"github.com/rs/zerolog"
)

// touchInterval bounds how often a resolve writes lastSeenAt back
const touchInterval = time.Minute

// SessionStore persists sessions keyed by the SHA-256 of the token.
// repository.SessionRepository and MemoryStore both satisfy it.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, tokenHash string) (*models.Session, error)
	Touch(ctx context.Context, tokenHash string, lastSeenAt int64) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, lastSeenBefore int64) (int64, error)
}

// SessionManager issues and resolves opaque session tokens with a sliding TTL
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewSessionManager creates a SessionManager over store
func NewSessionManager(store SessionStore, ttl time.Duration, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		log:   log.With().Str("component", "sessions").Logger(),
	}
}

// SetClock replaces the time source
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// TTL returns the idle lifetime of a session
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// HashToken returns the hex SHA-256 of a raw token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create starts a session for userID and returns the raw token
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	now := m.now().UnixMilli()
	err := m.store.Save(ctx, &models.Session{
		TokenHash:  HashToken(token),
		UserID:     userID,
		IssuedAt:   now,
		LastSeenAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user bound to token. Unknown and expired tokens
// resolve to ok=false; expired sessions are deleted.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	hash := HashToken(token)

	session, err := m.store.Get(ctx, hash)
	if err != nil {
		return "", false, err
	}
	if session == nil {
		return "", false, nil
	}

	now := m.now()
	lastSeen := time.UnixMilli(session.LastSeenAt)
	if now.Sub(lastSeen) > m.ttl {
		if err := m.store.Delete(ctx, hash); err != nil {
			m.log.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return "", false, nil
	}

	if now.Sub(lastSeen) >= touchInterval {
		if err := m.store.Touch(ctx, hash, now.UnixMilli()); err != nil {
			m.log.Warn().Err(err).Msg("Failed to refresh session")
		}
	}
	return session.UserID, true, nil
}

// Destroy ends the session for token; unknown tokens are ignored
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, HashToken(token))
}

// DestroyAllForUser ends every session of userID
func (m *SessionManager) DestroyAllForUser(ctx context.Context, userID string) error {
	return m.store.DeleteByUser(ctx, userID)
}

// SweepExpired deletes sessions idle for longer than the TTL
func (m *SessionManager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now().Add(-m.ttl).UnixMilli())
}
