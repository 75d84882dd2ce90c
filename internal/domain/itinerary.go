// Package domain contains the core data types for the trip planner backend.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryStatus is the publication state of an itinerary.
// The only exposed transition is draft → published; there is no way back.
type ItineraryStatus string

const (
	StatusDraft     ItineraryStatus = "draft"
	StatusPublished ItineraryStatus = "published"
)

// Itinerary is the top-level aggregate: a multi-day travel plan owned by a
// user. It exclusively owns its Days and Photos; deleting an itinerary
// cascades to both (and to its reviews).
type Itinerary struct {
	ID          uuid.UUID       `json:"id"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"` // nil for orphaned itineraries
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Duration    int             `json:"duration"` // length of the trip in days
	Image       string          `json:"image,omitempty"`
	Destination string          `json:"destination"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Price       float64         `json:"price"`
	Rating      float64         `json:"rating"` // derived from reviews, never written directly
	Status      ItineraryStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Days and Photos are populated on aggregate reads; they are nil on
	// list reads where only the itinerary row is fetched.
	Days   []ItineraryDay   `json:"days,omitempty"`
	Photos []ItineraryPhoto `json:"photos,omitempty"`
}

// ItineraryDay is one day of an itinerary. (ItineraryID, DayNumber) is
// unique: reconciliation matches incoming day payloads on DayNumber, so the
// same number always resolves to the same row.
type ItineraryDay struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	DayNumber   int       `json:"day_number"` // 1-based
	Title       string    `json:"title"`
	Description string    `json:"description"`

	Stops []Stop `json:"stops,omitempty"`
}

// StopType categorizes a stop within a day.
type StopType string

const (
	StopActivity      StopType = "activity"
	StopFood          StopType = "food"
	StopAccommodation StopType = "accommodation"
	StopTransport     StopType = "transport"
	StopOther         StopType = "other"
)

// ValidStopType reports whether t is one of the known stop types.
func ValidStopType(t StopType) bool {
	switch t {
	case StopActivity, StopFood, StopAccommodation, StopTransport, StopOther:
		return true
	}
	return false
}

// Stop is a single place visited during one day of an itinerary.
// Stops are created and updated only through the aggregate reconciler and
// removed only by cascade when their parent day is deleted.
type Stop struct {
	ID           uuid.UUID `json:"id"`
	DayID        uuid.UUID `json:"day_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	StopType     StopType  `json:"stop_type"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	SortOrder    int       `json:"order"` // position within the day, ascending
	CreatedAt    time.Time `json:"created_at"`
}

// ItineraryPhoto is attached directly to an itinerary, independent of days.
type ItineraryPhoto struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Image       string    `json:"image"`
	Caption     string    `json:"caption,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
