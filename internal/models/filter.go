package models

// MapFilterKind selects which of an actor's maps a listing returns
type MapFilterKind string

const (
	FilterActive  MapFilterKind = "active"  // every non-trashed map
	FilterTrashed MapFilterKind = "trashed" // trash view
	FilterRoot    MapFilterKind = "root"    // non-trashed maps outside any folder
	FilterFolder  MapFilterKind = "folder"  // non-trashed maps in FolderID
)

// MapFilter is the listing filter; FolderID is set only for FilterFolder
type MapFilter struct {
	Kind     MapFilterKind
	FolderID string
}
