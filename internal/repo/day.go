package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// DayRepo defines the persistence operations for itinerary days.
// All operations are scoped by itineraryID to enforce ownership.
// The reconciler matches days on (itinerary_id, day_number), which is
// unique-constrained, so GetByNumber is the reconciliation lookup.
type DayRepo interface {
	// Create inserts a new day and returns the persisted record.
	// Returns domain.ErrDuplicate if the (itinerary, day_number) pair
	// already exists.
	Create(ctx context.Context, day domain.ItineraryDay) (domain.ItineraryDay, error)

	// GetByNumber retrieves a day by its number within the itinerary.
	// Returns domain.ErrNotFound when the itinerary has no such day.
	GetByNumber(ctx context.Context, itineraryID uuid.UUID, dayNumber int) (domain.ItineraryDay, error)

	// ListByItinerary returns all days of an itinerary ordered by
	// day_number ascending. Stops are not populated.
	ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryDay, error)

	// Update overwrites the mutable fields (title, description) of an
	// existing day in place. Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, day domain.ItineraryDay) (domain.ItineraryDay, error)
}

// pgDayRepo is the Postgres implementation of DayRepo.
type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

func (r *pgDayRepo) Create(ctx context.Context, day domain.ItineraryDay) (domain.ItineraryDay, error) {
	const q = `
		INSERT INTO itinerary_days (itinerary_id, day_number, title, description)
		VALUES (@itinerary_id, @day_number, @title, @description)
		RETURNING id, itinerary_id, day_number, title, description`

	args := pgx.NamedArgs{
		"itinerary_id": day.ItineraryID,
		"day_number":   day.DayNumber,
		"title":        day.Title,
		"description":  day.Description,
	}

	result, err := scanDay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ItineraryDay{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDayRepo) GetByNumber(ctx context.Context, itineraryID uuid.UUID, dayNumber int) (domain.ItineraryDay, error) {
	const q = `
		SELECT id, itinerary_id, day_number, title, description
		FROM itinerary_days
		WHERE itinerary_id = @itinerary_id AND day_number = @day_number`

	args := pgx.NamedArgs{"itinerary_id": itineraryID, "day_number": dayNumber}
	result, err := scanDay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ItineraryDay{}, fmt.Errorf("repo.DayRepo.GetByNumber: %w", err)
	}
	return result, nil
}

func (r *pgDayRepo) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryDay, error) {
	const q = `
		SELECT id, itinerary_id, day_number, title, description
		FROM itinerary_days
		WHERE itinerary_id = @itinerary_id
		ORDER BY day_number ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByItinerary: %w", err)
	}
	defer rows.Close()

	var days []domain.ItineraryDay
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DayRepo.ListByItinerary: scan: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByItinerary: rows: %w", err)
	}

	return days, nil
}

func (r *pgDayRepo) Update(ctx context.Context, day domain.ItineraryDay) (domain.ItineraryDay, error) {
	const q = `
		UPDATE itinerary_days
		SET title = @title, description = @description
		WHERE id = @id
		RETURNING id, itinerary_id, day_number, title, description`

	args := pgx.NamedArgs{
		"id":          day.ID,
		"title":       day.Title,
		"description": day.Description,
	}

	result, err := scanDay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ItineraryDay{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}
	return result, nil
}

// scanDay maps a single database row into a domain.ItineraryDay.
func scanDay(s scanner) (domain.ItineraryDay, error) {
	var (
		d     domain.ItineraryDay
		id    pgtype.UUID
		itnID pgtype.UUID
	)

	err := s.Scan(&id, &itnID, &d.DayNumber, &d.Title, &d.Description)
	if err != nil {
		return domain.ItineraryDay{}, mapPgError(err)
	}

	d.ID = uuid.UUID(id.Bytes)
	d.ItineraryID = uuid.UUID(itnID.Bytes)
	return d, nil
}
