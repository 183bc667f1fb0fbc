package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/mindmap-server/internal/validation"
	"github.com/rs/zerolog"
)

// folderService is the concrete implementation of FolderService.
// Every operation is scoped to the actor's own folders.
type folderService struct {
	folders   repository.FolderRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newFolderService(folders repository.FolderRepository, log zerolog.Logger) *folderService {
	return &folderService{
		folders:   folders,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "folders").Logger(),
	}
}

func (s *folderService) List(ctx context.Context, actor *auth.Actor) ([]*models.Folder, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	return s.folders.ListByUser(ctx, actor.ID)
}

func (s *folderService) Create(ctx context.Context, actor *auth.Actor, name string) (*models.Folder, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if err := invalid(s.validator.ValidateFolderName(name)); err != nil {
		return nil, err
	}

	owner := actor.ID
	now := nowMillis()
	for attempt := 0; attempt < idAttempts; attempt++ {
		folder := &models.Folder{
			ID:        newID("folder"),
			Name:      strings.TrimSpace(name),
			UserID:    &owner,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := s.folders.Create(ctx, folder)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("folder_id", folder.ID).Str("user_id", actor.ID).Msg("Folder created")
		return folder, nil
	}
	return nil, fmt.Errorf("could not allocate a folder id after %d attempts", idAttempts)
}

// Rename is a silent no-op for folders the actor does not own
func (s *folderService) Rename(ctx context.Context, actor *auth.Actor, id, name string) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if err := invalid(s.validator.ValidateFolderName(name)); err != nil {
		return err
	}
	renamed, err := s.folders.Rename(ctx, id, actor.ID, strings.TrimSpace(name), nowMillis())
	if err != nil {
		return err
	}
	if !renamed {
		s.log.Debug().Str("folder_id", id).Str("user_id", actor.ID).Msg("Rename matched no owned folder")
	}
	return nil
}

// Delete moves the folder's maps back to root, then removes the folder.
// Deleting another user's folder changes nothing.
func (s *folderService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	deleted, err := s.folders.DeleteAndReparent(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if deleted {
		s.log.Info().Str("folder_id", id).Str("user_id", actor.ID).Msg("Folder deleted")
	}
	return nil
}
