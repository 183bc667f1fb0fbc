package service

import (
	"context"
	"strings"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/mindmap-server/internal/validation"
	"github.com/rs/zerolog"
)

// authService is the concrete implementation of AuthService
type authService struct {
	users       repository.UserRepository
	credentials *auth.Credentials
	sessions    *auth.SessionManager
	validator   *validation.Validator
	log         zerolog.Logger
}

func newAuthService(users repository.UserRepository, creds *auth.Credentials, sessions *auth.SessionManager, log zerolog.Logger) *authService {
	return &authService{
		users:       users,
		credentials: creds,
		sessions:    sessions,
		validator:   validation.NewValidator(),
		log:         log.With().Str("service", "auth").Logger(),
	}
}

// Login checks the credentials and opens a session, returning its raw token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	if err := invalid(s.validator.ValidateLogin(req)); err != nil {
		return nil, "", err
	}

	username := strings.TrimSpace(req.Username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !s.credentials.Verify(req.Password, user.PasswordHash) {
		s.log.Warn().Str("username", username).Msg("Login failed")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Str("user_id", user.ID).Msg("Login succeeded")
	return user, token, nil
}

// Logout ends the session for token
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Me returns the stored user behind actor
func (s *authService) Me(ctx context.Context, actor *auth.Actor) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// ResolveActor maps a session token to its actor. A nil actor with a nil
// error means no valid session, including sessions of deleted users.
func (s *authService) ResolveActor(ctx context.Context, token string) (*auth.Actor, error) {
	userID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil || !ok {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if err := s.sessions.Destroy(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("Failed to drop session of missing user")
		}
		return nil, nil
	}
	return auth.ActorFromUser(user), nil
}
