package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mindmap-server/internal/database"
	"github.com/mindmap-server/internal/models"
)

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	DeleteCascade(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// MapRepository defines the interface for map data operations.
// Methods taking a userID only touch rows owned by that user.
type MapRepository interface {
	Create(ctx context.Context, m *models.MindMap) error
	GetByID(ctx context.Context, id string) (*models.MindMap, error)
	UpdateContent(ctx context.Context, id, title string, data json.RawMessage, updatedAt int64) error
	List(ctx context.Context, userID string, filter models.MapFilter) ([]*models.MindMap, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetTrashed(ctx context.Context, id, userID string, trashed bool) (bool, error)
	Move(ctx context.Context, id, userID string, folderID *string) (bool, error)
	AssignOrphans(ctx context.Context, userID string) (int64, error)
	StreamByUser(ctx context.Context, userID string, callback func(*models.MindMap) error) error
	Count(ctx context.Context) (int, error)
}

// FolderRepository defines the interface for folder data operations
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Folder, error)
	Rename(ctx context.Context, id, userID, name string, updatedAt int64) (bool, error)
	DeleteAndReparent(ctx context.Context, id, userID string) (bool, error)
	AssignOrphans(ctx context.Context, userID string) (int64, error)
}

// SessionRepository persists sessions keyed by token hash
type SessionRepository interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, tokenHash string) (*models.Session, error)
	Touch(ctx context.Context, tokenHash string, lastSeenAt int64) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, lastSeenBefore int64) (int64, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Map     MapRepository
	Folder  FolderRepository
	Session SessionRepository
	Store   HealthChecker // nil when no database backs the repositories
}

// HealthChecker reports whether the underlying store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Map:     NewMapRepo(db),
		Folder:  NewFolderRepo(db),
		Session: NewSessionRepo(db),
		Store:   db,
	}
}

// isUniqueViolation reports whether err is a unique or primary key violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
