package service

import (
	"context"
	"net/http"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/rs/zerolog"
)

// AuthService defines the interface for login and session resolution
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, actor *auth.Actor) (*models.User, error)
	ResolveActor(ctx context.Context, token string) (*auth.Actor, error)
}

// MapService defines the interface for map operations
type MapService interface {
	Save(ctx context.Context, actor *auth.Actor, req *models.SaveMapRequest) (*models.MindMap, error)
	Get(ctx context.Context, actor *auth.Actor, id string) (*models.MindMap, error)
	List(ctx context.Context, actor *auth.Actor, filter models.MapFilter) ([]models.MapSummary, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
	Trash(ctx context.Context, actor *auth.Actor, id string) error
	Restore(ctx context.Context, actor *auth.Actor, id string) error
	Move(ctx context.Context, actor *auth.Actor, id string, folderID *string) error
}

// FolderService defines the interface for folder operations
type FolderService interface {
	List(ctx context.Context, actor *auth.Actor) ([]*models.Folder, error)
	Create(ctx context.Context, actor *auth.Actor, name string) (*models.Folder, error)
	Rename(ctx context.Context, actor *auth.Actor, id, name string) error
	Delete(ctx context.Context, actor *auth.Actor, id string) error
}

// UserService defines the interface for account administration
type UserService interface {
	List(ctx context.Context, actor *auth.Actor) ([]*models.User, error)
	Create(ctx context.Context, actor *auth.Actor, req *models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor *auth.Actor, id string, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamMaps(ctx context.Context, actor *auth.Actor, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, actor *auth.Actor, resource string) (int, error)
}

// SessionSweeper defines the background purge of expired sessions
type SessionSweeper interface {
	Start(ctx context.Context)
	Stop()
	Sweep(ctx context.Context)
}

// repository.SessionRepository backs the default session store
var _ auth.SessionStore = repository.SessionRepository(nil)

// Services holds all service interfaces
type Services struct {
	Auth        AuthService
	Maps        MapService
	Folders     FolderService
	Users       UserService
	Export      ExportService
	Sweeper     SessionSweeper
	Provisioner *Provisioner
	Store       repository.HealthChecker
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	var store auth.SessionStore = repos.Session
	if cfg.Session.Store == config.SessionStoreMemory {
		store = auth.NewMemoryStore()
	}
	log.Info().Str("store", cfg.Session.Store).Dur("ttl", cfg.Session.TTL).Msg("Session store selected")

	sessions := auth.NewSessionManager(store, cfg.Session.TTL, log)
	creds := auth.NewCredentials(cfg.Session.BcryptCost)

	return &Services{
		Auth:        newAuthService(repos.User, creds, sessions, log),
		Maps:        newMapService(repos.Map, repos.Folder, log),
		Folders:     newFolderService(repos.Folder, log),
		Users:       newUserService(repos.User, creds, sessions, log),
		Export:      newExportService(repos, log),
		Sweeper:     newSessionSweeper(sessions, cfg.Session.SweepInterval, log),
		Provisioner: NewProvisioner(repos, creds, cfg.Admin, log),
		Store:       repos.Store,
	}
}
