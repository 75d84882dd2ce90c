package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

// ReviewService implements review CRUD plus the derived-rating rule: every
// review write recomputes the target itinerary's mean rating inside the
// same transaction.
type ReviewService struct {
	reads  repo.Tx
	runner repo.TxRunner
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reads repo.Tx, runner repo.TxRunner) *ReviewService {
	return &ReviewService{reads: reads, runner: runner}
}

// Create validates and persists a review. The target itinerary must be
// visible to the caller. At most one review per (user, itinerary) exists;
// a second attempt fails with domain.ErrDuplicate and leaves the first
// review unchanged.
func (s *ReviewService) Create(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, rating int, comment string) (domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return domain.Review{}, err
	}
	if err := validateComment(comment); err != nil {
		return domain.Review{}, err
	}

	it, err := s.reads.Itineraries.GetByID(ctx, itineraryID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}
	if !canRead(it, &callerID) {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", domain.ErrNotFound)
	}

	var created domain.Review
	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		rv, err := tx.Reviews.Create(ctx, domain.Review{
			UserID:      callerID,
			ItineraryID: itineraryID,
			Rating:      rating,
			Comment:     comment,
		})
		if err != nil {
			return err
		}
		created = rv
		return recomputeRating(ctx, tx, itineraryID)
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}
	return created, nil
}

// ListByItinerary returns all reviews of a visible itinerary, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReviewService) ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.Review, error) {
	it, err := s.reads.Itineraries.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.ReviewService.ListByItinerary: %w", err)
	}
	if !canRead(it, callerID) {
		return nil, fmt.Errorf("service.ReviewService.ListByItinerary: %w", domain.ErrNotFound)
	}

	reviews, err := s.reads.Reviews.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.ReviewService.ListByItinerary: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// Update overwrites rating and comment of an existing review.
// Only the review's author may update it.
func (s *ReviewService) Update(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return domain.Review{}, err
	}
	if err := validateComment(comment); err != nil {
		return domain.Review{}, err
	}

	existing, err := s.reads.Reviews.GetByID(ctx, itineraryID, reviewID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Update: %w", err)
	}
	if existing.UserID != callerID {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Update: %w: not the review author", domain.ErrPermissionDenied)
	}

	var updated domain.Review
	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		existing.Rating = rating
		existing.Comment = comment
		rv, err := tx.Reviews.Update(ctx, existing)
		if err != nil {
			return err
		}
		updated = rv
		return recomputeRating(ctx, tx, itineraryID)
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a review. Only the review's author may delete it.
func (s *ReviewService) Delete(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID) error {
	existing, err := s.reads.Reviews.GetByID(ctx, itineraryID, reviewID)
	if err != nil {
		return fmt.Errorf("service.ReviewService.Delete: %w", err)
	}
	if existing.UserID != callerID {
		return fmt.Errorf("service.ReviewService.Delete: %w: not the review author", domain.ErrPermissionDenied)
	}

	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		if err := tx.Reviews.Delete(ctx, itineraryID, reviewID); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, itineraryID)
	})
	if err != nil {
		return fmt.Errorf("service.ReviewService.Delete: %w", err)
	}
	return nil
}

// recomputeRating refreshes the itinerary's derived rating from the mean of
// its remaining reviews (0 when none).
func recomputeRating(ctx context.Context, tx repo.Tx, itineraryID uuid.UUID) error {
	avg, err := tx.Reviews.AverageRating(ctx, itineraryID)
	if err != nil {
		return err
	}
	return tx.Itineraries.SetRating(ctx, itineraryID, avg)
}

// validateRating enforces the rating bounds shared by Create and Update:
// an integer from 1 to 5.
func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	return nil
}

// validateComment trims the comment and caps it. Currently the only rule is
// length; comments are optional.
func validateComment(comment string) error {
	if len(strings.TrimSpace(comment)) > 2000 {
		return fmt.Errorf("%w: comment too long", domain.ErrValidation)
	}
	return nil
}
