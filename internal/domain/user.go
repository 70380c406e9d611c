package domain

import "time"

type User struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Name      string    `json:"name"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the server-side record behind a bearer token. Tokens are
// issued by the external identity exchange, not minted here.
type Session struct {
	SessionToken string    `gorm:"primaryKey" json:"session_token"`
	UserID       string    `gorm:"index" json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
