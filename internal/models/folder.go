package models

// Folder groups a user's maps; maps reference it through FolderID
type Folder struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	UserID    *string `json:"-" db:"user_id"`
	CreatedAt int64   `json:"createdAt" db:"created_at"`
	UpdatedAt int64   `json:"updatedAt" db:"updated_at"`
}

// FolderRequest is the payload for creating or renaming a folder
type FolderRequest struct {
	Name string `json:"name"`
}
