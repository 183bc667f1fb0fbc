package models

import (
	"encoding/json"
)

// DefaultMapTitle is used when a new map is saved without a title
const DefaultMapTitle = "Sans titre"

// MindMap is a stored map document. Data is owned by the client and kept opaque.
type MindMap struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Data      json.RawMessage `json:"-" db:"data"`
	FolderID  *string         `json:"folderId" db:"folder_id"`
	Trashed   bool            `json:"trashed" db:"trashed"`
	UserID    *string         `json:"-" db:"user_id"` // nil only for legacy orphans
	CreatedAt int64           `json:"createdAt" db:"created_at"`
	UpdatedAt int64           `json:"updatedAt" db:"updated_at"`
}

// OwnerID returns the owning user id, or "" for an orphan row
func (m *MindMap) OwnerID() string {
	if m.UserID == nil {
		return ""
	}
	return *m.UserID
}

// MapSummary is a list entry; it never carries the document body
type MapSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	FolderID  *string `json:"folderId"`
	Trashed   bool    `json:"trashed"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Summary returns the list view of the map
func (m *MindMap) Summary() MapSummary {
	return MapSummary{
		ID:        m.ID,
		Title:     m.Title,
		FolderID:  m.FolderID,
		Trashed:   m.Trashed,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SaveMapRequest is the upsert payload of POST /api/maps
type SaveMapRequest struct {
	ID    *string         `json:"id"`
	Title *string         `json:"title"`
	Map   json.RawMessage `json:"map"`
}

// Empty reports whether the payload carried none of its fields, as for a
// body of null or {}
func (r *SaveMapRequest) Empty() bool {
	return r.ID == nil && r.Title == nil && len(r.Map) == 0
}

// SaveMapResponse is returned after a save
type SaveMapResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}

// MoveMapRequest is the payload of PUT /api/maps/:id/move; a nil folder means root
type MoveMapRequest struct {
	FolderID *string `json:"folderId"`
}

// MapExport is one record of a map export
type MapExport struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	FolderID  *string         `json:"folderId"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Map       json.RawMessage `json:"map"`
}
