package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/mindmap-server/internal/validation"
	"github.com/rs/zerolog"
)

var emptyMapData = json.RawMessage(`{}`)

// mapService is the concrete implementation of MapService
type mapService struct {
	maps      repository.MapRepository
	folders   repository.FolderRepository
	validator *validation.Validator
	log       zerolog.Logger
}

// newMapService creates a new MapService
func newMapService(maps repository.MapRepository, folders repository.FolderRepository, log zerolog.Logger) *mapService {
	return &mapService{
		maps:      maps,
		folders:   folders,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "maps").Logger(),
	}
}

// Save upserts a map by id. Ownership is checked only when the id already exists.
func (s *mapService) Save(ctx context.Context, actor *auth.Actor, req *models.SaveMapRequest) (*models.MindMap, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if err := invalid(s.validator.ValidateSaveMap(req)); err != nil {
		return nil, err
	}

	data := req.Map
	if len(data) == 0 || string(data) == "null" {
		data = emptyMapData
	}

	if req.ID == nil || *req.ID == "" {
		return s.createGenerated(ctx, actor, req.Title, data)
	}
	id := *req.ID

	existing, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.update(ctx, actor, existing, req.Title, data)
	}

	m := s.newMap(actor, id, req.Title, data)
	err = s.maps.Create(ctx, m)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race with a concurrent insert of the same id
		existing, err = s.maps.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("map %s vanished during save", id)
		}
		return s.update(ctx, actor, existing, req.Title, data)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("map_id", id).Str("user_id", actor.ID).Msg("Map created with caller id")
	return m, nil
}

func (s *mapService) createGenerated(ctx context.Context, actor *auth.Actor, title *string, data json.RawMessage) (*models.MindMap, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		m := s.newMap(actor, newID("map"), title, data)
		err := s.maps.Create(ctx, m)
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Warn().Str("map_id", m.ID).Msg("Generated map id collided, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("map_id", m.ID).Str("user_id", actor.ID).Msg("Map created")
		return m, nil
	}
	return nil, fmt.Errorf("could not allocate a map id after %d attempts", idAttempts)
}

func (s *mapService) newMap(actor *auth.Actor, id string, title *string, data json.RawMessage) *models.MindMap {
	now := nowMillis()
	owner := actor.ID
	m := &models.MindMap{
		ID:        id,
		Title:     models.DefaultMapTitle,
		Data:      data,
		UserID:    &owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if title != nil {
		m.Title = *title
	}
	return m
}

func (s *mapService) update(ctx context.Context, actor *auth.Actor, existing *models.MindMap, title *string, data json.RawMessage) (*models.MindMap, error) {
	if err := auth.Can(actor, existing.OwnerID()).Err(); err != nil {
		return nil, err
	}

	// an omitted title keeps the stored one; it is not reset to the default
	if title != nil {
		existing.Title = *title
	}
	existing.Data = data
	existing.UpdatedAt = nowMillis()

	if err := s.maps.UpdateContent(ctx, existing.ID, existing.Title, existing.Data, existing.UpdatedAt); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get returns a map the actor may read
func (s *mapService) Get(ctx context.Context, actor *auth.Actor, id string) (*models.MindMap, error) {
	return s.load(ctx, actor, id)
}

// List returns the actor's own maps; admins get no cross-user listing
func (s *mapService) List(ctx context.Context, actor *auth.Actor, filter models.MapFilter) ([]models.MapSummary, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	maps, err := s.maps.List(ctx, actor.ID, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MapSummary, 0, len(maps))
	for _, m := range maps {
		summaries = append(summaries, m.Summary())
	}
	return summaries, nil
}

// Delete hard-deletes a map
func (s *mapService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if _, err := s.maps.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("map_id", id).Str("user_id", actor.ID).Msg("Map deleted")
	return nil
}

// Trash moves one of the actor's maps to the trash; other maps are left alone
func (s *mapService) Trash(ctx context.Context, actor *auth.Actor, id string) error {
	return s.setTrashed(ctx, actor, id, true)
}

// Restore takes one of the actor's maps out of the trash
func (s *mapService) Restore(ctx context.Context, actor *auth.Actor, id string) error {
	return s.setTrashed(ctx, actor, id, false)
}

func (s *mapService) setTrashed(ctx context.Context, actor *auth.Actor, id string, trashed bool) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	changed, err := s.maps.SetTrashed(ctx, id, actor.ID, trashed)
	if err != nil {
		return err
	}
	if !changed {
		s.log.Debug().Str("map_id", id).Str("user_id", actor.ID).Bool("trashed", trashed).
			Msg("Trash update matched no owned map")
	}
	return nil
}

// Move puts one of the actor's maps into folderID, or at root when nil.
// The target folder must belong to the actor.
func (s *mapService) Move(ctx context.Context, actor *auth.Actor, id string, folderID *string) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	if folderID != nil {
		folder, err := s.folders.GetByID(ctx, *folderID)
		if err != nil {
			return err
		}
		if folder == nil || folder.UserID == nil || *folder.UserID != actor.ID {
			return fmt.Errorf("folder %s: %w", *folderID, ErrNotFound)
		}
	}

	changed, err := s.maps.Move(ctx, id, actor.ID, folderID)
	if err != nil {
		return err
	}
	if !changed {
		s.log.Debug().Str("map_id", id).Str("user_id", actor.ID).Msg("Move matched no owned map")
	}
	return nil
}

// load fetches a map and runs the ownership check
func (s *mapService) load(ctx context.Context, actor *auth.Actor, id string) (*models.MindMap, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	m, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("map %s: %w", id, ErrNotFound)
	}
	if err := auth.Can(actor, m.OwnerID()).Err(); err != nil {
		return nil, err
	}
	return m, nil
}
