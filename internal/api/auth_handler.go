package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, logout and identity endpoints
type AuthHandler struct {
	services *service.Services
	signer   *auth.CookieSigner
	cfg      config.SessionConfig
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, signer *auth.CookieSigner, cfg config.SessionConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		signer:   signer,
		cfg:      cfg,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	user, token, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.setSessionCookie(c, token); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.services.Auth.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/auth/me. It also renews the cookie so its lifetime
// follows the sliding session.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.services.Auth.Me(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if token := sessionToken(c); token != "" {
		if err := h.setSessionCookie(c, token); err != nil {
			h.log.Warn().Err(err).Msg("Failed to renew session cookie")
		}
	}
	c.JSON(http.StatusOK, user.Info())
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) error {
	value, err := h.signer.Sign(token)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, int(h.cfg.TTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}
