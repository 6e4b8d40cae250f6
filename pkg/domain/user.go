package domain

import "time"

// User represents an account row in the credential store. The registration
// subsystem owns creation and mutation; this service only reads users.
type User struct {
	ID           int64
	Email        string
	Name         *string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing view of a user, with the password hash
// stripped.
type PublicUser struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name,omitempty"`
	IsVerified bool    `json:"is_verified"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		IsVerified: u.IsVerified,
	}
}
