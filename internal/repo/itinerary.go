package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// ItineraryRepo defines the persistence operations for the itinerary row
// itself. Child rows (days, stops, photos) have their own repos; the
// service-layer reconciler composes them inside one transaction.
type ItineraryRepo interface {
	// Create inserts a new itinerary and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// GetByID retrieves a single itinerary row by its UUID primary key.
	// Returns domain.ErrNotFound if no itinerary with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)

	// ListPublished returns one page of published itineraries ordered by
	// created_at descending, plus the total published count.
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error)

	// ListByOwner returns all itineraries owned by the given user, any
	// status, ordered by created_at descending.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error)

	// ListPublishedByOwner is ListByOwner restricted to published rows,
	// for the public creator page.
	ListPublishedByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error)

	// Update overwrites the mutable scalar fields of an itinerary and
	// returns the updated record. Status and rating are not touched here;
	// they have dedicated setters below.
	Update(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// SetStatus transitions the publication status.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ItineraryStatus) (domain.Itinerary, error)

	// SetRating overwrites the derived rating field.
	SetRating(ctx context.Context, id uuid.UUID, rating float64) error

	// Delete removes an itinerary by ID. Days, stops, photos, and reviews
	// go with it via FK cascade. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgItineraryRepo is the Postgres implementation of ItineraryRepo.
type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db
// connection. In production pass *pgxpool.Pool or a pgx.Tx from the runner.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const itineraryColumns = `id, user_id, name, description, duration, image, destination,
	latitude, longitude, price, rating, status, created_at, updated_at`

func (r *pgItineraryRepo) Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	q := `
		INSERT INTO itineraries (user_id, name, description, duration, image, destination,
		                         latitude, longitude, price, rating, status)
		VALUES (@user_id, @name, @description, @duration, @image, @destination,
		        @latitude, @longitude, @price, @rating, @status)
		RETURNING ` + itineraryColumns

	args := pgx.NamedArgs{
		"user_id":     it.UserID, // nil becomes NULL (orphaned itinerary)
		"name":        it.Name,
		"description": it.Description,
		"duration":    it.Duration,
		"image":       it.Image,
		"destination": it.Destination,
		"latitude":    it.Latitude,
		"longitude":   it.Longitude,
		"price":       it.Price,
		"rating":      it.Rating,
		"status":      it.Status,
	}

	result, err := scanItinerary(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	q := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = @id`

	result, err := scanItinerary(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error) {
	var total int64
	countQ := `SELECT count(*) FROM itineraries WHERE status = 'published'`
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListPublished: count: %w", err)
	}

	q := `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE status = 'published'
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	items, err := r.list(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListPublished: %w", err)
	}
	return items, total, nil
}

func (r *pgItineraryRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	q := `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE user_id = @user_id
		ORDER BY created_at DESC`

	items, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByOwner: %w", err)
	}
	return items, nil
}

func (r *pgItineraryRepo) ListPublishedByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	q := `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE user_id = @user_id AND status = 'published'
		ORDER BY created_at DESC`

	items, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListPublishedByOwner: %w", err)
	}
	return items, nil
}

func (r *pgItineraryRepo) Update(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	q := `
		UPDATE itineraries
		SET name        = @name,
		    description = @description,
		    duration    = @duration,
		    image       = @image,
		    destination = @destination,
		    latitude    = @latitude,
		    longitude   = @longitude,
		    price       = @price,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + itineraryColumns

	args := pgx.NamedArgs{
		"id":          it.ID,
		"name":        it.Name,
		"description": it.Description,
		"duration":    it.Duration,
		"image":       it.Image,
		"destination": it.Destination,
		"latitude":    it.Latitude,
		"longitude":   it.Longitude,
		"price":       it.Price,
	}

	result, err := scanItinerary(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ItineraryStatus) (domain.Itinerary, error) {
	q := `
		UPDATE itineraries
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + itineraryColumns

	result, err := scanItinerary(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": status}))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.SetStatus: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	q := `UPDATE itineraries SET rating = @rating, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "rating": rating})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.SetRating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.SetRating: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgItineraryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM itineraries WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgItineraryRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Itinerary, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// scanItinerary maps a single database row into a domain.Itinerary.
// It handles the UUID and the nullable owner/coordinate conversions.
func scanItinerary(s scanner) (domain.Itinerary, error) {
	var (
		it     domain.Itinerary
		id     pgtype.UUID
		userID pgtype.UUID
		lat    pgtype.Float8
		lng    pgtype.Float8
		status string
	)

	err := s.Scan(&id, &userID, &it.Name, &it.Description, &it.Duration, &it.Image,
		&it.Destination, &lat, &lng, &it.Price, &it.Rating, &status,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return domain.Itinerary{}, mapPgError(err)
	}

	it.ID = uuid.UUID(id.Bytes)
	if userID.Valid {
		uid := uuid.UUID(userID.Bytes)
		it.UserID = &uid
	}
	if lat.Valid {
		v := lat.Float64
		it.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		it.Longitude = &v
	}
	it.Status = domain.ItineraryStatus(status)

	return it, nil
}
