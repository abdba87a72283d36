package model

import "time"

// User is a registered account. PasswordHash is never serialized.
// AvatarName holds the stored filename of the user's avatar (empty if none).
type User struct {
	ID           string    `json:"id"       db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email"    db:"email"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	Active       bool      `json:"active"   db:"active"`
	AvatarName   string    `json:"-"        db:"avatar_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
