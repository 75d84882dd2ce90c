package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is the bcrypt hash of the
// password and must never be serialized into a response body.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
