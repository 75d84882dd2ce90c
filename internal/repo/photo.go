package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// PhotoRepo defines the persistence operations for itinerary photos.
// Photos are append-only from the aggregate's perspective: the nested write
// payload only ever adds photos, removal happens through Delete.
type PhotoRepo interface {
	// Create inserts a new photo and returns the persisted record.
	Create(ctx context.Context, photo domain.ItineraryPhoto) (domain.ItineraryPhoto, error)

	// ListByItinerary returns all photos of an itinerary, newest upload first.
	ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error)

	// Delete removes a photo by ID, scoped to the given itineraryID.
	// Returns domain.ErrNotFound if no photo with that ID exists under
	// that itinerary.
	Delete(ctx context.Context, itineraryID, photoID uuid.UUID) error
}

// pgPhotoRepo is the Postgres implementation of PhotoRepo.
type pgPhotoRepo struct {
	db db
}

// NewPhotoRepo constructs a PhotoRepo backed by the provided db connection.
func NewPhotoRepo(db db) PhotoRepo {
	return &pgPhotoRepo{db: db}
}

func (r *pgPhotoRepo) Create(ctx context.Context, photo domain.ItineraryPhoto) (domain.ItineraryPhoto, error) {
	const q = `
		INSERT INTO itinerary_photos (itinerary_id, image, caption)
		VALUES (@itinerary_id, @image, @caption)
		RETURNING id, itinerary_id, image, caption, uploaded_at`

	args := pgx.NamedArgs{
		"itinerary_id": photo.ItineraryID,
		"image":        photo.Image,
		"caption":      photo.Caption,
	}

	result, err := scanPhoto(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ItineraryPhoto{}, fmt.Errorf("repo.PhotoRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPhotoRepo) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error) {
	const q = `
		SELECT id, itinerary_id, image, caption, uploaded_at
		FROM itinerary_photos
		WHERE itinerary_id = @itinerary_id
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID})
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByItinerary: %w", err)
	}
	defer rows.Close()

	var photos []domain.ItineraryPhoto
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PhotoRepo.ListByItinerary: scan: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByItinerary: rows: %w", err)
	}

	return photos, nil
}

func (r *pgPhotoRepo) Delete(ctx context.Context, itineraryID, photoID uuid.UUID) error {
	const q = `DELETE FROM itinerary_photos WHERE id = @id AND itinerary_id = @itinerary_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": photoID, "itinerary_id": itineraryID})
	if err != nil {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanPhoto maps a single database row into a domain.ItineraryPhoto.
func scanPhoto(s scanner) (domain.ItineraryPhoto, error) {
	var (
		p     domain.ItineraryPhoto
		id    pgtype.UUID
		itnID pgtype.UUID
	)

	err := s.Scan(&id, &itnID, &p.Image, &p.Caption, &p.UploadedAt)
	if err != nil {
		return domain.ItineraryPhoto{}, mapPgError(err)
	}

	p.ID = uuid.UUID(id.Bytes)
	p.ItineraryID = uuid.UUID(itnID.Bytes)
	return p, nil
}
