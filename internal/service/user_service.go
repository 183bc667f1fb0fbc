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

// userService is the concrete implementation of UserService (admin only)
type userService struct {
	users       repository.UserRepository
	credentials *auth.Credentials
	sessions    *auth.SessionManager
	validator   *validation.Validator
	log         zerolog.Logger
}

func newUserService(users repository.UserRepository, creds *auth.Credentials, sessions *auth.SessionManager, log zerolog.Logger) *userService {
	return &userService{
		users:       users,
		credentials: creds,
		sessions:    sessions,
		validator:   validation.NewValidator(),
		log:         log.With().Str("service", "users").Logger(),
	}
}

// List returns every account
func (s *userService) List(ctx context.Context, actor *auth.Actor) ([]*models.User, error) {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Create adds a non-admin account
func (s *userService) Create(ctx context.Context, actor *auth.Actor, req *models.CreateUserRequest) (*models.User, error) {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return nil, err
	}
	if err := invalid(s.validator.ValidateCreateUser(req)); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}
	now := nowMillis()
	user := &models.User{
		ID:           newID("user"),
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", username).Str("by", actor.ID).Msg("User created")
	return user, nil
}

// Update changes the display name and/or password of an account
func (s *userService) Update(ctx context.Context, actor *auth.Actor, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return nil, err
	}
	if err := invalid(s.validator.ValidateUpdateUser(req)); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Password != nil {
		hash, err := s.credentials.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = nowMillis()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Str("by", actor.ID).Msg("User updated")
	return user, nil
}

// Delete removes an account with its maps, folders and sessions. Admin accounts are refused.
func (s *userService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return err
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err := auth.CanDeleteUser(actor, target).Err(); err != nil {
		return err
	}

	deleted, err := s.users.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if err := s.sessions.DestroyAllForUser(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("Failed to destroy sessions of deleted user")
	}
	s.log.Info().Str("user_id", id).Str("by", actor.ID).Msg("User deleted")
	return nil
}
