package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

// UserHandler handles the admin user-management endpoints
type UserHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		log:      log.With().Str("handler", "users").Logger(),
	}
}

// ListUsers handles GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /api/admin/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	user, err := h.services.Users.Update(c.Request.Context(), actorFrom(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.services.Users.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats handles GET /api/admin/stats
func (h *UserHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	users, err := h.services.Export.GetCount(ctx, actor, "users")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	maps, err := h.services.Export.GetCount(ctx, actor, "maps")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "maps": maps})
}
