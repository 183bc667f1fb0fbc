package mocks

import (
	"context"
	"net/http"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/service"
)

// MockAuthService is a mock implementation of AuthService.
// Tokens listed in Actors resolve to that actor.
type MockAuthService struct {
	Actors    map[string]*auth.Actor
	LoginFunc func(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	Resolved  int
}

// Verify interface compliance
var _ service.AuthService = (*MockAuthService)(nil)

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{Actors: make(map[string]*auth.Actor)}
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, "", service.ErrInvalidCredentials
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	delete(m.Actors, token)
	return nil
}

func (m *MockAuthService) Me(ctx context.Context, actor *auth.Actor) (*models.User, error) {
	if actor == nil {
		return nil, service.ErrUnauthenticated
	}
	return &models.User{ID: actor.ID, Username: actor.Username, DisplayName: actor.Username, IsAdmin: actor.IsAdmin}, nil
}

func (m *MockAuthService) ResolveActor(ctx context.Context, token string) (*auth.Actor, error) {
	m.Resolved++
	return m.Actors[token], nil
}

// MockMapService is a mock implementation of MapService
type MockMapService struct {
	SaveFunc    func(ctx context.Context, actor *auth.Actor, req *models.SaveMapRequest) (*models.MindMap, error)
	GetFunc     func(ctx context.Context, actor *auth.Actor, id string) (*models.MindMap, error)
	ListFunc    func(ctx context.Context, actor *auth.Actor, filter models.MapFilter) ([]models.MapSummary, error)
	DeleteFunc  func(ctx context.Context, actor *auth.Actor, id string) error
	TrashCalls  []string
	MoveCalls   []string
	LastFilters []models.MapFilter
}

// Verify interface compliance
var _ service.MapService = (*MockMapService)(nil)

func NewMockMapService() *MockMapService {
	return &MockMapService{}
}

func (m *MockMapService) Save(ctx context.Context, actor *auth.Actor, req *models.SaveMapRequest) (*models.MindMap, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, actor, req)
	}
	return &models.MindMap{ID: "map-000000000000", Title: models.DefaultMapTitle, Data: req.Map}, nil
}

func (m *MockMapService) Get(ctx context.Context, actor *auth.Actor, id string) (*models.MindMap, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, id)
	}
	return nil, service.ErrNotFound
}

func (m *MockMapService) List(ctx context.Context, actor *auth.Actor, filter models.MapFilter) ([]models.MapSummary, error) {
	m.LastFilters = append(m.LastFilters, filter)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, filter)
	}
	return []models.MapSummary{}, nil
}

func (m *MockMapService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}

func (m *MockMapService) Trash(ctx context.Context, actor *auth.Actor, id string) error {
	m.TrashCalls = append(m.TrashCalls, "trash:"+id)
	return nil
}

func (m *MockMapService) Restore(ctx context.Context, actor *auth.Actor, id string) error {
	m.TrashCalls = append(m.TrashCalls, "restore:"+id)
	return nil
}

func (m *MockMapService) Move(ctx context.Context, actor *auth.Actor, id string, folderID *string) error {
	target := "root"
	if folderID != nil {
		target = *folderID
	}
	m.MoveCalls = append(m.MoveCalls, id+"->"+target)
	return nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamMapsFunc func(ctx context.Context, actor *auth.Actor, w http.ResponseWriter, format string) error
	Counts         map[string]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"users": 0,
			"maps":  0,
		},
	}
}

func (m *MockExportService) StreamMaps(ctx context.Context, actor *auth.Actor, w http.ResponseWriter, format string) error {
	if m.StreamMapsFunc != nil {
		return m.StreamMapsFunc(ctx, actor, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, actor *auth.Actor, resource string) (int, error) {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return 0, err
	}
	return m.Counts[resource], nil
}
