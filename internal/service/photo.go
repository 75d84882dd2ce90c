package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

// PhotoService implements the standalone photo operations. Photos also ride
// along on aggregate create/update payloads (append-only); this service
// covers attaching and removing them outside an aggregate write.
type PhotoService struct {
	reads repo.Tx
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(reads repo.Tx) *PhotoService {
	return &PhotoService{reads: reads}
}

// Add attaches a photo to an itinerary. Only the owner may add photos.
func (s *PhotoService) Add(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, spec domain.PhotoSpec) (domain.ItineraryPhoto, error) {
	if strings.TrimSpace(spec.Image) == "" {
		return domain.ItineraryPhoto{}, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	it, err := s.reads.Itineraries.GetByID(ctx, itineraryID)
	if err != nil {
		return domain.ItineraryPhoto{}, fmt.Errorf("service.PhotoService.Add: %w", err)
	}
	if err := mustOwn(it, callerID); err != nil {
		return domain.ItineraryPhoto{}, fmt.Errorf("service.PhotoService.Add: %w", err)
	}

	photo, err := s.reads.Photos.Create(ctx, domain.ItineraryPhoto{
		ItineraryID: itineraryID,
		Image:       spec.Image,
		Caption:     spec.Caption,
	})
	if err != nil {
		return domain.ItineraryPhoto{}, fmt.Errorf("service.PhotoService.Add: %w", err)
	}
	return photo, nil
}

// ListByItinerary returns the photos of a visible itinerary, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PhotoService) ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error) {
	it, err := s.reads.Itineraries.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.PhotoService.ListByItinerary: %w", err)
	}
	if !canRead(it, callerID) {
		return nil, fmt.Errorf("service.PhotoService.ListByItinerary: %w", domain.ErrNotFound)
	}

	photos, err := s.reads.Photos.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.PhotoService.ListByItinerary: %w", err)
	}
	if photos == nil {
		photos = []domain.ItineraryPhoto{}
	}
	return photos, nil
}

// Remove deletes a photo. Only the itinerary owner may remove photos.
func (s *PhotoService) Remove(ctx context.Context, callerID uuid.UUID, itineraryID, photoID uuid.UUID) error {
	it, err := s.reads.Itineraries.GetByID(ctx, itineraryID)
	if err != nil {
		return fmt.Errorf("service.PhotoService.Remove: %w", err)
	}
	if err := mustOwn(it, callerID); err != nil {
		return fmt.Errorf("service.PhotoService.Remove: %w", err)
	}

	if err := s.reads.Photos.Delete(ctx, itineraryID, photoID); err != nil {
		return fmt.Errorf("service.PhotoService.Remove: %w", err)
	}
	return nil
}
