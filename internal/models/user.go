package models

// User represents an account that owns maps and folders
type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	DisplayName  string `json:"displayName" db:"display_name"`
	IsAdmin      bool   `json:"isAdmin" db:"is_admin"`
	CreatedAt    int64  `json:"createdAt" db:"created_at"` // epoch milliseconds
	UpdatedAt    int64  `json:"updatedAt" db:"updated_at"`
}

// UserInfo is the public view returned by the auth endpoints
type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Info returns the public view of the user
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
	}
}

// CreateUserRequest is the admin payload for a new account
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Password    *string `json:"password,omitempty"`
}
