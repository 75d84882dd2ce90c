package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of an itinerary. At most one review exists per
// (user, itinerary) pair; a second attempt fails with ErrDuplicate.
// Reviews are listed newest first.
type Review struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Rating      int       `json:"rating"` // integer 1..5
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
