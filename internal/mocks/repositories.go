package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.MapRepository     = (*MockMapRepository)(nil)
	_ repository.FolderRepository  = (*MockFolderRepository)(nil)
	_ repository.SessionRepository = (*MockSessionRepository)(nil)
)

// NewMockRepositories wires fresh mocks into a Repositories. Deleting a user
// through the returned user mock also removes rows from the map and folder mocks.
func NewMockRepositories() (*repository.Repositories, *MockUserRepository, *MockMapRepository, *MockFolderRepository) {
	maps := NewMockMapRepository()
	folders := NewMockFolderRepository(maps)
	users := NewMockUserRepository()
	users.Maps = maps
	users.Folders = folders

	return &repository.Repositories{
		User:    users,
		Map:     maps,
		Folder:  folders,
		Session: NewMockSessionRepository(),
	}, users, maps, folders
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	Maps        *MockMapRepository
	Folders     *MockFolderRepository
	InsertError error
	GetError    error
	UpdateCalls int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, u := range m.Users {
		if u.Username == user.Username || u.ID == user.ID {
			return repository.ErrDuplicate
		}
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	if u, ok := m.Users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, err := m.GetByUsername(ctx, username)
	return u != nil, err
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) DeleteCascade(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok || u.IsAdmin {
		return false, nil
	}
	if m.Maps != nil {
		m.Maps.deleteByUser(id)
	}
	if m.Folders != nil {
		m.Folders.deleteByUser(id)
	}
	delete(m.Users, id)
	return true, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockMapRepository is a mock implementation of MapRepository
type MockMapRepository struct {
	mu         sync.Mutex
	Maps       map[string]*models.MindMap
	CreateFunc func(ctx context.Context, m *models.MindMap) error
	ListError  error
	Creates    int
}

func NewMockMapRepository() *MockMapRepository {
	return &MockMapRepository{Maps: make(map[string]*models.MindMap)}
}

func copyMap(src *models.MindMap) *models.MindMap {
	dst := *src
	if src.Data != nil {
		dst.Data = append(json.RawMessage(nil), src.Data...)
	}
	if src.FolderID != nil {
		folderID := *src.FolderID
		dst.FolderID = &folderID
	}
	if src.UserID != nil {
		userID := *src.UserID
		dst.UserID = &userID
	}
	return &dst
}

func (m *MockMapRepository) Create(ctx context.Context, mm *models.MindMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, mm); err != nil {
			return err
		}
	}
	if _, exists := m.Maps[mm.ID]; exists {
		return repository.ErrDuplicate
	}
	m.Maps[mm.ID] = copyMap(mm)
	return nil
}

func (m *MockMapRepository) GetByID(ctx context.Context, id string) (*models.MindMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.Maps[id]; ok {
		return copyMap(mm), nil
	}
	return nil, nil
}

func (m *MockMapRepository) UpdateContent(ctx context.Context, id, title string, data json.RawMessage, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.Maps[id]; ok {
		mm.Title = title
		mm.Data = append(json.RawMessage(nil), data...)
		mm.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockMapRepository) List(ctx context.Context, userID string, filter models.MapFilter) ([]*models.MindMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	maps := make([]*models.MindMap, 0)
	for _, mm := range m.Maps {
		if mm.OwnerID() != userID || mm.OwnerID() == "" {
			continue
		}
		switch filter.Kind {
		case models.FilterTrashed:
			if !mm.Trashed {
				continue
			}
		case models.FilterRoot:
			if mm.Trashed || mm.FolderID != nil {
				continue
			}
		case models.FilterFolder:
			if mm.Trashed || mm.FolderID == nil || *mm.FolderID != filter.FolderID {
				continue
			}
		default:
			if mm.Trashed {
				continue
			}
		}
		summary := copyMap(mm)
		summary.Data = nil
		maps = append(maps, summary)
	}
	sort.Slice(maps, func(i, j int) bool {
		if maps[i].UpdatedAt != maps[j].UpdatedAt {
			return maps[i].UpdatedAt > maps[j].UpdatedAt
		}
		return maps[i].ID < maps[j].ID
	})
	return maps, nil
}

func (m *MockMapRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Maps[id]
	delete(m.Maps, id)
	return ok, nil
}

func (m *MockMapRepository) SetTrashed(ctx context.Context, id, userID string, trashed bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.Maps[id]
	if !ok || mm.OwnerID() != userID {
		return false, nil
	}
	mm.Trashed = trashed
	return true, nil
}

func (m *MockMapRepository) Move(ctx context.Context, id, userID string, folderID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.Maps[id]
	if !ok || mm.OwnerID() != userID {
		return false, nil
	}
	if folderID == nil {
		mm.FolderID = nil
	} else {
		f := *folderID
		mm.FolderID = &f
	}
	return true, nil
}

func (m *MockMapRepository) AssignOrphans(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, mm := range m.Maps {
		if mm.UserID == nil {
			owner := userID
			mm.UserID = &owner
			n++
		}
	}
	return n, nil
}

func (m *MockMapRepository) StreamByUser(ctx context.Context, userID string, callback func(*models.MindMap) error) error {
	listed, err := m.List(ctx, userID, models.MapFilter{Kind: models.FilterActive})
	if err != nil {
		return err
	}
	for _, summary := range listed {
		full, _ := m.GetByID(ctx, summary.ID)
		if full == nil {
			continue
		}
		if err := callback(full); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockMapRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Maps), nil
}

func (m *MockMapRepository) deleteByUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, mm := range m.Maps {
		if mm.OwnerID() == userID {
			delete(m.Maps, id)
		}
	}
}

func (m *MockMapRepository) clearFolder(folderID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range m.Maps {
		if mm.FolderID != nil && *mm.FolderID == folderID && mm.OwnerID() == userID {
			mm.FolderID = nil
		}
	}
}

// MockFolderRepository is a mock implementation of FolderRepository
type MockFolderRepository struct {
	mu      sync.Mutex
	Folders map[string]*models.Folder
	maps    *MockMapRepository
}

// NewMockFolderRepository creates a folder mock; maps may be nil
func NewMockFolderRepository(maps *MockMapRepository) *MockFolderRepository {
	return &MockFolderRepository{Folders: make(map[string]*models.Folder), maps: maps}
}

func (m *MockFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Folders[folder.ID]; exists {
		return repository.ErrDuplicate
	}
	stored := *folder
	m.Folders[folder.ID] = &stored
	return nil
}

func (m *MockFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.Folders[id]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (m *MockFolderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	folders := make([]*models.Folder, 0)
	for _, f := range m.Folders {
		if f.UserID != nil && *f.UserID == userID {
			copied := *f
			folders = append(folders, &copied)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].ID < folders[j].ID
	})
	return folders, nil
}

func (m *MockFolderRepository) Rename(ctx context.Context, id, userID, name string, updatedAt int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Folders[id]
	if !ok || f.UserID == nil || *f.UserID != userID {
		return false, nil
	}
	f.Name = name
	f.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockFolderRepository) DeleteAndReparent(ctx context.Context, id, userID string) (bool, error) {
	if m.maps != nil {
		m.maps.clearFolder(id, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Folders[id]
	if !ok || f.UserID == nil || *f.UserID != userID {
		return false, nil
	}
	delete(m.Folders, id)
	return true, nil
}

func (m *MockFolderRepository) AssignOrphans(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.Folders {
		if f.UserID == nil {
			owner := userID
			f.UserID = &owner
			n++
		}
	}
	return n, nil
}

func (m *MockFolderRepository) deleteByUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.Folders {
		if f.UserID != nil && *f.UserID == userID {
			delete(m.Folders, id)
		}
	}
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*models.Session
	GetError error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *session
	m.Sessions[session.TokenHash] = &stored
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, tokenHash string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	if s, ok := m.Sessions[tokenHash]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *MockSessionRepository) Touch(ctx context.Context, tokenHash string, lastSeenAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Sessions[tokenHash]; ok {
		s.LastSeenAt = lastSeenAt
	}
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, tokenHash)
	return nil
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.Sessions {
		if s.UserID == userID {
			delete(m.Sessions, hash)
		}
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, lastSeenBefore int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for hash, s := range m.Sessions {
		if s.LastSeenAt < lastSeenBefore {
			delete(m.Sessions, hash)
			n++
		}
	}
	return n, nil
}
