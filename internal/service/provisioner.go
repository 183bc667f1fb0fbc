package service

import (
	"context"
	"fmt"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/rs/zerolog"
)

// Provisioner makes sure the configured admin account exists and owns legacy rows
type Provisioner struct {
	repos       *repository.Repositories
	credentials *auth.Credentials
	admin       config.AdminConfig
	log         zerolog.Logger
}

// NewProvisioner creates a Provisioner for the configured admin
func NewProvisioner(repos *repository.Repositories, creds *auth.Credentials, admin config.AdminConfig, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		repos:       repos,
		credentials: creds,
		admin:       admin,
		log:         log.With().Str("component", "provisioner").Logger(),
	}
}

// Run provisions the admin and adopts orphan maps and folders.
// Failures are logged and startup carries on.
func (p *Provisioner) Run(ctx context.Context) {
	admin, err := p.ensureAdmin(ctx)
	if err != nil {
		p.log.Error().Err(err).Str("username", p.admin.Username).Msg("Admin provisioning failed")
		return
	}

	maps, err := p.repos.Map.AssignOrphans(ctx, admin.ID)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to assign orphan maps")
	}
	folders, err := p.repos.Folder.AssignOrphans(ctx, admin.ID)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to assign orphan folders")
	}
	if maps > 0 || folders > 0 {
		p.log.Info().Int64("maps", maps).Int64("folders", folders).Str("admin_id", admin.ID).
			Msg("Assigned orphan rows to admin")
	}
}

func (p *Provisioner) ensureAdmin(ctx context.Context) (*models.User, error) {
	user, err := p.repos.User.GetByUsername(ctx, p.admin.Username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		hash, err := p.credentials.Hash(p.admin.Password)
		if err != nil {
			return nil, err
		}
		now := nowMillis()
		user = &models.User{
			ID:           newID("user"),
			Username:     p.admin.Username,
			PasswordHash: hash,
			DisplayName:  p.admin.Username,
			IsAdmin:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := p.repos.User.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating admin: %w", err)
		}
		p.log.Info().Str("user_id", user.ID).Msg("Admin account created")
		return user, nil
	}

	changed := false
	if !p.credentials.Verify(p.admin.Password, user.PasswordHash) {
		hash, err := p.credentials.Hash(p.admin.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = true
		p.log.Info().Str("user_id", user.ID).Msg("Admin password updated from configuration")
	}
	if !user.IsAdmin {
		user.IsAdmin = true
		changed = true
		p.log.Info().Str("user_id", user.ID).Msg("Admin flag restored")
	}
	if changed {
		user.UpdatedAt = nowMillis()
		if err := p.repos.User.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("updating admin: %w", err)
		}
	}
	return user, nil
}
