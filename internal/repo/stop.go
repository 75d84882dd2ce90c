package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// StopRepo defines the persistence operations for stops.
// Single-row lookups are scoped by dayID: a stop ID that exists under a
// different day is reported as not found, which is what makes the
// reconciler's "never move a stop between days" rule hold.
type StopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// GetByID retrieves a stop by UUID, scoped to the given dayID.
	// Returns domain.ErrNotFound if no stop with that ID exists under
	// that day.
	GetByID(ctx context.Context, dayID, stopID uuid.UUID) (domain.Stop, error)

	// ListByDay returns all stops of a day ordered by sort_order
	// ascending, insertion order breaking ties.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Stop, error)

	// Update overwrites the mutable fields of a stop in place.
	// Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, stop domain.Stop) (domain.Stop, error)
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, itinerary_day_id, name, description, stop_type,
	location_name, latitude, longitude, sort_order, created_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	q := `
		INSERT INTO stops (itinerary_day_id, name, description, stop_type,
		                   location_name, latitude, longitude, sort_order)
		VALUES (@itinerary_day_id, @name, @description, @stop_type,
		        @location_name, @latitude, @longitude, @sort_order)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"itinerary_day_id": stop.DayID,
		"name":             stop.Name,
		"description":      stop.Description,
		"stop_type":        stop.StopType,
		"location_name":    stop.LocationName,
		"latitude":         stop.Latitude,
		"longitude":        stop.Longitude,
		"sort_order":       stop.SortOrder,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) GetByID(ctx context.Context, dayID, stopID uuid.UUID) (domain.Stop, error) {
	q := `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE id = @id AND itinerary_day_id = @itinerary_day_id`

	args := pgx.NamedArgs{"id": stopID, "itinerary_day_id": dayID}
	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Stop, error) {
	q := `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE itinerary_day_id = @itinerary_day_id
		ORDER BY sort_order ASC, created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"itinerary_day_id": dayID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByDay: %w", err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		st, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByDay: scan: %w", err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByDay: rows: %w", err)
	}

	return stops, nil
}

func (r *pgStopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	q := `
		UPDATE stops
		SET name          = @name,
		    description   = @description,
		    stop_type     = @stop_type,
		    location_name = @location_name,
		    latitude      = @latitude,
		    longitude     = @longitude,
		    sort_order    = @sort_order
		WHERE id = @id
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"id":            stop.ID,
		"name":          stop.Name,
		"description":   stop.Description,
		"stop_type":     stop.StopType,
		"location_name": stop.LocationName,
		"latitude":      stop.Latitude,
		"longitude":     stop.Longitude,
		"sort_order":    stop.SortOrder,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	return result, nil
}

// scanStop maps a single database row into a domain.Stop.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st       domain.Stop
		id       pgtype.UUID
		dayID    pgtype.UUID
		stopType string
	)

	err := s.Scan(&id, &dayID, &st.Name, &st.Description, &stopType,
		&st.LocationName, &st.Latitude, &st.Longitude, &st.SortOrder, &st.CreatedAt)
	if err != nil {
		return domain.Stop{}, mapPgError(err)
	}

	st.ID = uuid.UUID(id.Bytes)
	st.DayID = uuid.UUID(dayID.Bytes)
	st.StopType = domain.StopType(stopType)
	return st, nil
}
