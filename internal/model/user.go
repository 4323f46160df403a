// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash is the bcrypt hash of the user's password — the plaintext
// is never stored anywhere. The `json:"-"` tag guarantees the hash can
// never leak into an API response, even if a handler encodes the whole
// struct by mistake. The db/firestore tags map the same record onto the
// SQL and document-store backends so every backend produces an identical
// external shape.
//
// Users are created once via registration and never mutated or deleted;
// there are no update endpoints.
type User struct {
	ID           string    `json:"id"        db:"id"            firestore:"id"`
	Username     string    `json:"username"  db:"username"      firestore:"username"`
	Email        string    `json:"email"     db:"email"         firestore:"email"`
	PasswordHash string    `json:"-"         db:"password_hash" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"    firestore:"createdAt"`
}

// PublicUser is the projection of a User that is safe to hand to clients.
// It is what login and profile responses return.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
