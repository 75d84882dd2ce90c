// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce ownership and publication rules, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

// ItineraryService implements the aggregate write path for itineraries:
// nested create and reconciling update of days, stops, and photos, plus the
// visibility-filtered read operations.
//
// Every write runs inside one transaction supplied by the TxRunner. Input
// validation happens before the transaction opens, so a rejected payload
// never touches the database.
type ItineraryService struct {
	reads  repo.Tx // pool-backed repos for the read path
	runner repo.TxRunner
	log    *slog.Logger
}

// NewItineraryService constructs an ItineraryService.
// reads is a repo bundle over the connection pool; runner supplies
// transactions for aggregate writes; log receives persistence failures with
// full input context.
func NewItineraryService(reads repo.Tx, runner repo.TxRunner, log *slog.Logger) *ItineraryService {
	return &ItineraryService{reads: reads, runner: runner, log: log}
}

// Create validates and persists a new itinerary with its nested days and
// stops in one transaction.
//
// When the payload carries no day specifications but Duration is positive,
// exactly Duration days are synthesized, numbered 1..Duration and titled
// "Day {n}". Stops missing a location name get one from the address field
// or, failing that, a synthetic "Location: {lat}, {lng}".
//
// Returns domain.ErrValidation for malformed payloads (nothing written) and
// domain.ErrPersist when the transactional write fails (rolled back, logged).
func (s *ItineraryService) Create(ctx context.Context, ownerID uuid.UUID, in domain.ItineraryCreate) (domain.Itinerary, error) {
	if err := validateCreate(in); err != nil {
		return domain.Itinerary{}, err
	}

	days := in.Days
	if len(days) == 0 && in.Duration > 0 {
		days = synthesizeDays(in.Duration)
	}

	var created domain.Itinerary
	err := s.runner.InTx(ctx, func(tx repo.Tx) error {
		it, err := tx.Itineraries.Create(ctx, domain.Itinerary{
			UserID:      &ownerID,
			Name:        in.Name,
			Description: in.Description,
			Duration:    in.Duration,
			Image:       in.Image,
			Destination: in.Destination,
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			Price:       in.Price,
			Rating:      0,
			Status:      domain.StatusDraft,
		})
		if err != nil {
			return err
		}

		for _, spec := range days {
			day, err := tx.Days.Create(ctx, domain.ItineraryDay{
				ItineraryID: it.ID,
				DayNumber:   spec.DayNumber,
				Title:       spec.Title,
				Description: spec.Description,
			})
			if err != nil {
				return err
			}
			for _, stopSpec := range spec.Stops {
				if _, err := tx.Stops.Create(ctx, stopFromSpec(day.ID, stopSpec)); err != nil {
					return err
				}
			}
		}

		for _, photoSpec := range in.Photos {
			photo := domain.ItineraryPhoto{ItineraryID: it.ID, Image: photoSpec.Image, Caption: photoSpec.Caption}
			if _, err := tx.Photos.Create(ctx, photo); err != nil {
				return err
			}
		}

		created = it
		return nil
	})
	if err != nil {
		return domain.Itinerary{}, s.persistErr(ctx, "Create", err, "name", in.Name, "days", len(days))
	}

	return s.loadAggregate(ctx, created)
}

// Update applies a partial update to an existing itinerary and reconciles
// its nested day/stop payload in one transaction.
//
// Scalar fields are merged: nil pointers leave the stored value unchanged.
// A nil Days slice leaves days untouched. A non-nil Days slice is
// reconciled day by day: an existing day with the same day_number is
// overwritten in place, an unknown number creates a new day. Days absent
// from the payload are never deleted. Within a day, a stop spec whose ID
// resolves to a stop of that day overwrites it; any other spec creates a
// new stop — stops are never moved between days or deleted here.
//
// Only the owner may update. Returns domain.ErrNotFound when the itinerary
// is absent, domain.ErrPermissionDenied for non-owners.
func (s *ItineraryService) Update(ctx context.Context, callerID uuid.UUID, id uuid.UUID, in domain.ItineraryUpdate) (domain.Itinerary, error) {
	current, err := s.reads.Itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Update: %w", err)
	}
	if err := mustOwn(current, callerID); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Update: %w", err)
	}
	if err := validateUpdate(in); err != nil {
		return domain.Itinerary{}, err
	}

	merged := mergeScalars(current, in)

	var updated domain.Itinerary
	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		it, err := tx.Itineraries.Update(ctx, merged)
		if err != nil {
			return err
		}

		for _, spec := range in.Days {
			if err := reconcileDay(ctx, tx, it.ID, spec); err != nil {
				return err
			}
		}

		for _, photoSpec := range in.Photos {
			photo := domain.ItineraryPhoto{ItineraryID: it.ID, Image: photoSpec.Image, Caption: photoSpec.Caption}
			if _, err := tx.Photos.Create(ctx, photo); err != nil {
				return err
			}
		}

		updated = it
		return nil
	})
	if err != nil {
		return domain.Itinerary{}, s.persistErr(ctx, "Update", err, "itinerary_id", id, "days", len(in.Days))
	}

	return s.loadAggregate(ctx, updated)
}

// reconcileDay upserts one day by its (itinerary, day_number) key and then
// reconciles the day's stop specs against the persisted stops.
func reconcileDay(ctx context.Context, tx repo.Tx, itineraryID uuid.UUID, spec domain.DaySpec) error {
	day, err := tx.Days.GetByNumber(ctx, itineraryID, spec.DayNumber)
	switch {
	case err == nil:
		day.Title = spec.Title
		day.Description = spec.Description
		if day, err = tx.Days.Update(ctx, day); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrNotFound):
		day, err = tx.Days.Create(ctx, domain.ItineraryDay{
			ItineraryID: itineraryID,
			DayNumber:   spec.DayNumber,
			Title:       spec.Title,
			Description: spec.Description,
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	for _, stopSpec := range spec.Stops {
		if err := reconcileStop(ctx, tx, day.ID, stopSpec); err != nil {
			return err
		}
	}
	return nil
}

// reconcileStop overwrites the stop named by spec.ID when it belongs to the
// given day; otherwise (no ID, or an ID owned by a different day) it creates
// a new stop under this day. A mismatched ID never mutates the foreign stop.
func reconcileStop(ctx context.Context, tx repo.Tx, dayID uuid.UUID, spec domain.StopSpec) error {
	if spec.ID != nil {
		existing, err := tx.Stops.GetByID(ctx, dayID, *spec.ID)
		if err == nil {
			next := stopFromSpec(dayID, spec)
			next.ID = existing.ID
			_, err = tx.Stops.Update(ctx, next)
			return err
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		// ID not under this day: fall through to create.
	}
	_, err := tx.Stops.Create(ctx, stopFromSpec(dayID, spec))
	return err
}

// Get returns the full aggregate (days with stops, photos) for one
// itinerary, applying the visibility rule: published itineraries are
// readable by anyone, drafts only by their owner. A draft read by anyone
// else reports domain.ErrNotFound, not ErrPermissionDenied, so drafts stay
// invisible.
func (s *ItineraryService) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (domain.Itinerary, error) {
	it, err := s.reads.Itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	if !canRead(it, callerID) {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", domain.ErrNotFound)
	}
	return s.loadAggregate(ctx, it)
}

// ListPublished returns one page of published itineraries plus the total
// published count. Child collections are not populated on list reads.
func (s *ItineraryService) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error) {
	items, total, err := s.reads.Itineraries.ListPublished(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ItineraryService.ListPublished: %w", err)
	}
	if items == nil {
		items = []domain.Itinerary{}
	}
	return items, total, nil
}

// ListByCreator returns a creator's itineraries: all of them when the
// caller is the creator, published only for anyone else.
func (s *ItineraryService) ListByCreator(ctx context.Context, callerID *uuid.UUID, creatorID uuid.UUID) ([]domain.Itinerary, error) {
	var (
		items []domain.Itinerary
		err   error
	)
	if callerID != nil && *callerID == creatorID {
		items, err = s.reads.Itineraries.ListByOwner(ctx, creatorID)
	} else {
		items, err = s.reads.Itineraries.ListPublishedByOwner(ctx, creatorID)
	}
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListByCreator: %w", err)
	}
	if items == nil {
		items = []domain.Itinerary{}
	}
	return items, nil
}

// Publish transitions a draft itinerary to published. The transition is
// one-way; publishing an already published itinerary is a no-op success.
// Only the owner may publish.
func (s *ItineraryService) Publish(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (domain.Itinerary, error) {
	it, err := s.reads.Itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Publish: %w", err)
	}
	if err := mustOwn(it, callerID); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Publish: %w", err)
	}
	if it.Status == domain.StatusPublished {
		return it, nil
	}

	published, err := s.reads.Itineraries.SetStatus(ctx, id, domain.StatusPublished)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Publish: %w", err)
	}
	return published, nil
}

// Delete removes an itinerary and, by FK cascade, all its days, stops,
// photos, and reviews. Only the owner may delete.
func (s *ItineraryService) Delete(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error {
	it, err := s.reads.Itineraries.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	if err := mustOwn(it, callerID); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	if err := s.reads.Itineraries.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	return nil
}

// loadAggregate attaches days (with their stops, in order) and photos to
// the itinerary row.
func (s *ItineraryService) loadAggregate(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	days, err := s.reads.Days.ListByItinerary(ctx, it.ID)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.loadAggregate: %w", err)
	}
	for i := range days {
		stops, err := s.reads.Stops.ListByDay(ctx, days[i].ID)
		if err != nil {
			return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.loadAggregate: %w", err)
		}
		days[i].Stops = stops
	}
	it.Days = days

	photos, err := s.reads.Photos.ListByItinerary(ctx, it.ID)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.loadAggregate: %w", err)
	}
	it.Photos = photos

	return it, nil
}

// persistErr logs a failed aggregate write with its input context and wraps
// it as domain.ErrPersist. The underlying cause stays in the log; callers
// see only the generic sentinel.
func (s *ItineraryService) persistErr(ctx context.Context, op string, err error, attrs ...any) error {
	s.log.ErrorContext(ctx, "aggregate write failed",
		append([]any{"op", op, "error", err}, attrs...)...)
	return fmt.Errorf("service.ItineraryService.%s: %w", op, domain.ErrPersist)
}

// mergeScalars overlays the non-nil scalar fields of the update onto the
// stored row. Status and rating are never merged here; status moves only
// through Publish and rating only through review recomputation.
func mergeScalars(current domain.Itinerary, in domain.ItineraryUpdate) domain.Itinerary {
	if in.Name != nil {
		current.Name = *in.Name
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	if in.Duration != nil {
		current.Duration = *in.Duration
	}
	if in.Image != nil {
		current.Image = *in.Image
	}
	if in.Destination != nil {
		current.Destination = *in.Destination
	}
	if in.Latitude != nil {
		current.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		current.Longitude = in.Longitude
	}
	if in.Price != nil {
		current.Price = *in.Price
	}
	return current
}

// synthesizeDays builds the default day list for a create without explicit
// days: numbered 1..duration, titled "Day {n}", no stops.
func synthesizeDays(duration int) []domain.DaySpec {
	days := make([]domain.DaySpec, duration)
	for i := range days {
		days[i] = domain.DaySpec{DayNumber: i + 1, Title: fmt.Sprintf("Day %d", i+1)}
	}
	return days
}

// stopFromSpec builds the persisted form of a stop spec, applying the
// location-name defaulting rule and the stop-type default.
func stopFromSpec(dayID uuid.UUID, spec domain.StopSpec) domain.Stop {
	st := domain.Stop{
		DayID:        dayID,
		Name:         spec.Name,
		Description:  spec.Description,
		StopType:     spec.StopType,
		LocationName: spec.ResolveLocationName(),
		Latitude:     spec.Latitude,
		Longitude:    spec.Longitude,
		SortOrder:    spec.SortOrder,
	}
	if st.StopType == "" {
		st.StopType = domain.StopOther
	}
	return st
}

// --- validation -------------------------------------------------------------

// validateCreate enforces the payload rules for a nested create. It runs
// before the transaction opens so a rejected payload writes nothing.
func validateCreate(in domain.ItineraryCreate) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Duration < 1 {
		return fmt.Errorf("%w: duration must be a positive number of days", domain.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if err := validateDaySpecs(in.Days, true); err != nil {
		return err
	}
	return nil
}

// validateUpdate enforces the payload rules for a partial update.
// Duplicate day numbers are allowed here: reconciliation processes specs in
// order and the later spec overwrites the same row (most recent write wins).
func validateUpdate(in domain.ItineraryUpdate) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if in.Duration != nil && *in.Duration < 1 {
		return fmt.Errorf("%w: duration must be a positive number of days", domain.ErrValidation)
	}
	if in.Price != nil && *in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return validateDaySpecs(in.Days, false)
}

// validateDaySpecs checks the nested day/stop payload. rejectDuplicates is
// set on create, where two specs with one day_number would otherwise race
// into the unique constraint mid-transaction.
func validateDaySpecs(days []domain.DaySpec, rejectDuplicates bool) error {
	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if day.DayNumber < 1 {
			return fmt.Errorf("%w: day_number must be positive", domain.ErrValidation)
		}
		if rejectDuplicates {
			if seen[day.DayNumber] {
				return fmt.Errorf("%w: duplicate day_number %d", domain.ErrValidation, day.DayNumber)
			}
			seen[day.DayNumber] = true
		}
		for _, stop := range day.Stops {
			if strings.TrimSpace(stop.Name) == "" {
				return fmt.Errorf("%w: stop name is required (day %d)", domain.ErrValidation, day.DayNumber)
			}
			if stop.StopType != "" && !domain.ValidStopType(stop.StopType) {
				return fmt.Errorf("%w: unknown stop_type %q", domain.ErrValidation, stop.StopType)
			}
			if stop.SortOrder < 0 {
				return fmt.Errorf("%w: stop order must not be negative", domain.ErrValidation)
			}
		}
	}
	return nil
}
