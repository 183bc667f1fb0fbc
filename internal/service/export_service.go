package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/models"
	"github.com/mindmap-server/internal/repository"
	"github.com/rs/zerolog"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamMaps streams the actor's non-trashed maps, documents included
func (s *exportService) StreamMaps(ctx context.Context, actor *auth.Actor, w http.ResponseWriter, format string) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	s.log.Info().Str("format", format).Str("user_id", actor.ID).Msg("Starting maps export")

	switch format {
	case "ndjson":
		return s.streamMapsNDJSON(ctx, actor.ID, w)
	case "json":
		return s.streamMapsJSON(ctx, actor.ID, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamMapsNDJSON(ctx context.Context, userID string, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=maps.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Map.StreamByUser(ctx, userID, func(m *models.MindMap) error {
		data, err := json.Marshal(exportRecord(m))
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Maps export completed")
	return err
}

func (s *exportService) streamMapsJSON(ctx context.Context, userID string, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=maps.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.Map.StreamByUser(ctx, userID, func(m *models.MindMap) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(exportRecord(m))
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func exportRecord(m *models.MindMap) models.MapExport {
	return models.MapExport{
		ID:        m.ID,
		Title:     m.Title,
		FolderID:  m.FolderID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Map:       m.Data,
	}
}

// GetCount returns the row count of a resource; admin only
func (s *exportService) GetCount(ctx context.Context, actor *auth.Actor, resource string) (int, error) {
	if err := auth.CanManageUsers(actor).Err(); err != nil {
		return 0, err
	}
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "maps":
		return s.repos.Map.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
