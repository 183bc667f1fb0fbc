package models

// Session binds a hashed session token to a user
type Session struct {
	TokenHash  string `db:"token_hash"`
	UserID     string `db:"user_id"`
	IssuedAt   int64  `db:"issued_at"`
	LastSeenAt int64  `db:"last_seen_at"`
}

// LoginRequest is the payload of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
