package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /api/maps/export?format=...
// Streams the actor's maps directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if format != "ndjson" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	actor := actorFrom(c)
	if err := h.services.Export.StreamMaps(c.Request.Context(), actor, c.Writer, format); err != nil {
		if !c.Writer.Written() {
			writeError(c, h.log, err)
			return
		}
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Str("user_id", actor.ID).Msg("Export failed")
	}
}
