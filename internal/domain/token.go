package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use credential mailed to a user who
// requested a password reset. Issuing a new token marks the user's prior
// unused tokens as used, so at most one token is active per user.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string // opaque random value; the only copy leaves via email
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Active reports whether the token can still redeem a reset at time now.
func (t PasswordResetToken) Active(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
