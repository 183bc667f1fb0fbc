package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

// MapHandler handles map endpoints
type MapHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMapHandler creates a new MapHandler
func NewMapHandler(services *service.Services, log zerolog.Logger) *MapHandler {
	return &MapHandler{
		services: services,
		log:      log.With().Str("handler", "maps").Logger(),
	}
}

// GetMaps handles GET /api/maps?id=&folder_id=&trashed=
// Without an id (or with id=0) it lists; otherwise it returns {map: <document>}.
func (h *MapHandler) GetMaps(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	id := c.Query("id")
	if id == "" || id == "0" {
		maps, err := h.services.Maps.List(ctx, actor, listFilter(c))
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, maps)
		return
	}

	m, err := h.services.Maps.Get(ctx, actor, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	data := m.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	c.JSON(http.StatusOK, gin.H{"map": data})
}

// listFilter reads the listing filter from the query string
func listFilter(c *gin.Context) models.MapFilter {
	if trashed := c.Query("trashed"); trashed == "true" || trashed == "1" {
		return models.MapFilter{Kind: models.FilterTrashed}
	}
	folderID, ok := c.GetQuery("folder_id")
	if !ok {
		return models.MapFilter{Kind: models.FilterActive}
	}
	if folderID == "" || folderID == "root" || folderID == "null" {
		return models.MapFilter{Kind: models.FilterRoot}
	}
	return models.MapFilter{Kind: models.FilterFolder, FolderID: folderID}
}

// SaveMap handles POST /api/maps
func (h *MapHandler) SaveMap(c *gin.Context) {
	var req models.SaveMapRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Empty() {
		badJSON(c)
		return
	}

	m, err := h.services.Maps.Save(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.SaveMapResponse{ID: m.ID, Title: m.Title, UpdatedAt: m.UpdatedAt})
}

// DeleteMap handles DELETE /api/maps/:id
func (h *MapHandler) DeleteMap(c *gin.Context) {
	if err := h.services.Maps.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TrashMap handles PUT /api/maps/:id/trash
func (h *MapHandler) TrashMap(c *gin.Context) {
	if err := h.services.Maps.Trash(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RestoreMap handles PUT /api/maps/:id/restore
func (h *MapHandler) RestoreMap(c *gin.Context) {
	if err := h.services.Maps.Restore(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MoveMap handles PUT /api/maps/:id/move with body {folderId}; null means root
func (h *MapHandler) MoveMap(c *gin.Context) {
	var req models.MoveMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	if err := h.services.Maps.Move(c.Request.Context(), actorFrom(c), c.Param("id"), req.FolderID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
