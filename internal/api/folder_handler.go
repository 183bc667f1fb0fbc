package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

// FolderHandler handles folder endpoints
type FolderHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewFolderHandler creates a new FolderHandler
func NewFolderHandler(services *service.Services, log zerolog.Logger) *FolderHandler {
	return &FolderHandler{
		services: services,
		log:      log.With().Str("handler", "folders").Logger(),
	}
}

// ListFolders handles GET /api/folders
func (h *FolderHandler) ListFolders(c *gin.Context) {
	folders, err := h.services.Folders.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

// CreateFolder handles POST /api/folders
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var req models.FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	folder, err := h.services.Folders.Create(c.Request.Context(), actorFrom(c), req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// RenameFolder handles PUT /api/folders/:id
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	var req models.FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	if err := h.services.Folders.Rename(c.Request.Context(), actorFrom(c), c.Param("id"), req.Name); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteFolder handles DELETE /api/folders/:id
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	if err := h.services.Folders.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
