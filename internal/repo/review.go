package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// ReviewRepo defines the persistence operations for reviews.
// The (user_id, itinerary_id) pair is unique-constrained; Create surfaces a
// violation as domain.ErrDuplicate.
type ReviewRepo interface {
	// Create inserts a new review and returns the persisted record.
	// Returns domain.ErrDuplicate if the caller already reviewed this
	// itinerary.
	Create(ctx context.Context, review domain.Review) (domain.Review, error)

	// GetByID retrieves a review by UUID, scoped to the given itineraryID.
	GetByID(ctx context.Context, itineraryID, reviewID uuid.UUID) (domain.Review, error)

	// ListByItinerary returns all reviews of an itinerary, newest first.
	ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.Review, error)

	// Update overwrites rating and comment of an existing review.
	// Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, review domain.Review) (domain.Review, error)

	// Delete removes a review by ID, scoped to the given itineraryID.
	Delete(ctx context.Context, itineraryID, reviewID uuid.UUID) error

	// AverageRating returns the mean rating over all reviews of the
	// itinerary, or 0 when it has none.
	AverageRating(ctx context.Context, itineraryID uuid.UUID) (float64, error)
}

// pgReviewRepo is the Postgres implementation of ReviewRepo.
type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by the provided db connection.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

const reviewColumns = `id, user_id, itinerary_id, rating, comment, created_at, updated_at`

func (r *pgReviewRepo) Create(ctx context.Context, review domain.Review) (domain.Review, error) {
	q := `
		INSERT INTO reviews (user_id, itinerary_id, rating, comment)
		VALUES (@user_id, @itinerary_id, @rating, @comment)
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{
		"user_id":      review.UserID,
		"itinerary_id": review.ItineraryID,
		"rating":       review.Rating,
		"comment":      review.Comment,
	}

	result, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, itineraryID, reviewID uuid.UUID) (domain.Review, error) {
	q := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE id = @id AND itinerary_id = @itinerary_id`

	args := pgx.NamedArgs{"id": reviewID, "itinerary_id": itineraryID}
	result, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.Review, error) {
	q := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE itinerary_id = @itinerary_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByItinerary: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReviewRepo.ListByItinerary: scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByItinerary: rows: %w", err)
	}

	return reviews, nil
}

func (r *pgReviewRepo) Update(ctx context.Context, review domain.Review) (domain.Review, error) {
	q := `
		UPDATE reviews
		SET rating = @rating, comment = @comment, updated_at = now()
		WHERE id = @id
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{
		"id":      review.ID,
		"rating":  review.Rating,
		"comment": review.Comment,
	}

	result, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) Delete(ctx context.Context, itineraryID, reviewID uuid.UUID) error {
	q := `DELETE FROM reviews WHERE id = @id AND itinerary_id = @itinerary_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": reviewID, "itinerary_id": itineraryID})
	if err != nil {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgReviewRepo) AverageRating(ctx context.Context, itineraryID uuid.UUID) (float64, error) {
	// coalesce turns the no-reviews NULL into the documented 0.
	q := `
		SELECT coalesce(avg(rating), 0)
		FROM reviews
		WHERE itinerary_id = @itinerary_id`

	var avg float64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID}).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("repo.ReviewRepo.AverageRating: %w", err)
	}
	return avg, nil
}

// scanReview maps a single database row into a domain.Review.
func scanReview(s scanner) (domain.Review, error) {
	var (
		rv     domain.Review
		id     pgtype.UUID
		userID pgtype.UUID
		itnID  pgtype.UUID
	)

	err := s.Scan(&id, &userID, &itnID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return domain.Review{}, mapPgError(err)
	}

	rv.ID = uuid.UUID(id.Bytes)
	rv.UserID = uuid.UUID(userID.Bytes)
	rv.ItineraryID = uuid.UUID(itnID.Bytes)
	return rv, nil
}
