package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// Access rules for the itinerary aggregate. Kept in one place so the read
// and write paths cannot drift apart.

// canRead reports whether the caller may see the itinerary: published rows
// are public, drafts are visible to their owner only. callerID is nil for
// anonymous requests.
func canRead(it domain.Itinerary, callerID *uuid.UUID) bool {
	if it.Status == domain.StatusPublished {
		return true
	}
	return isOwner(it, callerID)
}

// mustOwn returns domain.ErrPermissionDenied unless the caller owns the
// itinerary. Mutations always go through this check, even on published
// rows.
func mustOwn(it domain.Itinerary, callerID uuid.UUID) error {
	if !isOwner(it, &callerID) {
		return fmt.Errorf("%w: not the itinerary owner", domain.ErrPermissionDenied)
	}
	return nil
}

// isOwner reports whether callerID matches the itinerary owner.
// Orphaned itineraries (nil owner) belong to nobody.
func isOwner(it domain.Itinerary, callerID *uuid.UUID) bool {
	return it.UserID != nil && callerID != nil && *it.UserID == *callerID
}
