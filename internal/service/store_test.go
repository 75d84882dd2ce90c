package service_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

// fakeStore is a hand-written in-memory implementation of the whole repo
// bundle. The reconciler composes several repos inside one transaction, so a
// per-method function mock gets unwieldy; a small stateful fake keeps the
// tests readable and lets them assert on what actually ended up "persisted".
//
// InTx snapshots the maps before running fn and restores them when fn fails,
// mimicking a rollback. Failure injection (failDayCreate etc.) drives the
// rollback tests.
type fakeStore struct {
	users       map[uuid.UUID]domain.User
	itineraries map[uuid.UUID]domain.Itinerary
	days        map[uuid.UUID]domain.ItineraryDay
	stops       map[uuid.UUID]domain.Stop
	photos      map[uuid.UUID]domain.ItineraryPhoto
	reviews     map[uuid.UUID]domain.Review
	tokens      map[uuid.UUID]domain.PasswordResetToken

	// seq orders stop rows the way created_at does in Postgres.
	seq int

	failDayCreate   error
	failStopCreate  error
	failPhotoCreate error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]domain.User),
		itineraries: make(map[uuid.UUID]domain.Itinerary),
		days:        make(map[uuid.UUID]domain.ItineraryDay),
		stops:       make(map[uuid.UUID]domain.Stop),
		photos:      make(map[uuid.UUID]domain.ItineraryPhoto),
		reviews:     make(map[uuid.UUID]domain.Review),
		tokens:      make(map[uuid.UUID]domain.PasswordResetToken),
	}
}

// tx returns a repo bundle over the store, for both the reads bundle and the
// transactional bundle.
func (s *fakeStore) tx() repo.Tx {
	return repo.Tx{
		Users:       &fakeUserRepo{s},
		Itineraries: &fakeItineraryRepo{s},
		Days:        &fakeDayRepo{s},
		Stops:       &fakeStopRepo{s},
		Photos:      &fakePhotoRepo{s},
		Reviews:     &fakeReviewRepo{s},
		ResetTokens: &fakeTokenRepo{s},
	}
}

func (s *fakeStore) runner() repo.TxRunner { return &fakeRunner{s} }

type fakeRunner struct{ store *fakeStore }

func (r *fakeRunner) InTx(_ context.Context, fn func(tx repo.Tx) error) error {
	snapshot := []any{
		copyMap(r.store.itineraries), copyMap(r.store.days), copyMap(r.store.stops),
		copyMap(r.store.photos), copyMap(r.store.reviews), copyMap(r.store.users),
		copyMap(r.store.tokens),
	}
	if err := fn(r.store.tx()); err != nil {
		r.store.itineraries = snapshot[0].(map[uuid.UUID]domain.Itinerary)
		r.store.days = snapshot[1].(map[uuid.UUID]domain.ItineraryDay)
		r.store.stops = snapshot[2].(map[uuid.UUID]domain.Stop)
		r.store.photos = snapshot[3].(map[uuid.UUID]domain.ItineraryPhoto)
		r.store.reviews = snapshot[4].(map[uuid.UUID]domain.Review)
		r.store.users = snapshot[5].(map[uuid.UUID]domain.User)
		r.store.tokens = snapshot[6].(map[uuid.UUID]domain.PasswordResetToken)
		return err
	}
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func notFound(what string) error {
	return fmt.Errorf("fake: %s: %w", what, domain.ErrNotFound)
}

// ---- users -----------------------------------------------------------------

type fakeUserRepo struct{ s *fakeStore }

var _ repo.UserRepo = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.User{}, fmt.Errorf("fake: email taken: %w", domain.ErrDuplicate)
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, notFound("user")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, notFound("user")
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.s.users[id]
	if !ok {
		return notFound("user")
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

// ---- itineraries -----------------------------------------------------------

type fakeItineraryRepo struct{ s *fakeStore }

var _ repo.ItineraryRepo = (*fakeItineraryRepo)(nil)

func (r *fakeItineraryRepo) Create(_ context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	it.ID = uuid.New()
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt
	it.Days, it.Photos = nil, nil
	r.s.itineraries[it.ID] = it
	return it, nil
}

func (r *fakeItineraryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Itinerary, error) {
	it, ok := r.s.itineraries[id]
	if !ok {
		return domain.Itinerary{}, notFound("itinerary")
	}
	return it, nil
}

func (r *fakeItineraryRepo) ListPublished(_ context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error) {
	var items []domain.Itinerary
	for _, it := range r.s.itineraries {
		if it.Status == domain.StatusPublished {
			items = append(items, it)
		}
	}
	total := int64(len(items))
	// The fake ignores paging offsets; tests exercising pagination math run
	// against the real repo.
	if p.Limit > 0 && len(items) > p.Limit {
		items = items[:p.Limit]
	}
	return items, total, nil
}

func (r *fakeItineraryRepo) ListByOwner(_ context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	var items []domain.Itinerary
	for _, it := range r.s.itineraries {
		if it.UserID != nil && *it.UserID == userID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *fakeItineraryRepo) ListPublishedByOwner(_ context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	var items []domain.Itinerary
	for _, it := range r.s.itineraries {
		if it.UserID != nil && *it.UserID == userID && it.Status == domain.StatusPublished {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *fakeItineraryRepo) Update(_ context.Context, in domain.Itinerary) (domain.Itinerary, error) {
	it, ok := r.s.itineraries[in.ID]
	if !ok {
		return domain.Itinerary{}, notFound("itinerary")
	}
	it.Name = in.Name
	it.Description = in.Description
	it.Duration = in.Duration
	it.Image = in.Image
	it.Destination = in.Destination
	it.Latitude = in.Latitude
	it.Longitude = in.Longitude
	it.Price = in.Price
	it.UpdatedAt = time.Now()
	r.s.itineraries[it.ID] = it
	return it, nil
}

func (r *fakeItineraryRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.ItineraryStatus) (domain.Itinerary, error) {
	it, ok := r.s.itineraries[id]
	if !ok {
		return domain.Itinerary{}, notFound("itinerary")
	}
	it.Status = status
	r.s.itineraries[id] = it
	return it, nil
}

func (r *fakeItineraryRepo) SetRating(_ context.Context, id uuid.UUID, rating float64) error {
	it, ok := r.s.itineraries[id]
	if !ok {
		return notFound("itinerary")
	}
	it.Rating = rating
	r.s.itineraries[id] = it
	return nil
}

func (r *fakeItineraryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.itineraries[id]; !ok {
		return notFound("itinerary")
	}
	delete(r.s.itineraries, id)
	for dayID, day := range r.s.days {
		if day.ItineraryID != id {
			continue
		}
		delete(r.s.days, dayID)
		for stopID, stop := range r.s.stops {
			if stop.DayID == dayID {
				delete(r.s.stops, stopID)
			}
		}
	}
	for photoID, photo := range r.s.photos {
		if photo.ItineraryID == id {
			delete(r.s.photos, photoID)
		}
	}
	for reviewID, review := range r.s.reviews {
		if review.ItineraryID == id {
			delete(r.s.reviews, reviewID)
		}
	}
	return nil
}

// ---- days ------------------------------------------------------------------

type fakeDayRepo struct{ s *fakeStore }

var _ repo.DayRepo = (*fakeDayRepo)(nil)

func (r *fakeDayRepo) Create(_ context.Context, day domain.ItineraryDay) (domain.ItineraryDay, error) {
	if r.s.failDayCreate != nil {
		return domain.ItineraryDay{}, r.s.failDayCreate
	}
	for _, existing := range r.s.days {
		if existing.ItineraryID == day.ItineraryID && existing.DayNumber == day.DayNumber {
			return domain.ItineraryDay{}, fmt.Errorf("fake: day exists: %w", domain.ErrDuplicate)
		}
	}
	day.ID = uuid.New()
	day.Stops = nil
	r.s.days[day.ID] = day
	return day, nil
}

func (r *fakeDayRepo) GetByNumber(_ context.Context, itineraryID uuid.UUID, dayNumber int) (domain.ItineraryDay, error) {
	for _, day := range r.s.days {
		if day.ItineraryID == itineraryID && day.DayNumber == dayNumber {
			return day, nil
		}
	}
	return domain.ItineraryDay{}, notFound("day")
}

func (r *fakeDayRepo) ListByItinerary(_ context.Context, itineraryID uuid.UUID) ([]domain.ItineraryDay, error) {
	var days []domain.ItineraryDay
	for _, day := range r.s.days {
		if day.ItineraryID == itineraryID {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func (r *fakeDayRepo) Update(_ context.Context, in domain.ItineraryDay) (domain.ItineraryDay, error) {
	day, ok := r.s.days[in.ID]
	if !ok {
		return domain.ItineraryDay{}, notFound("day")
	}
	day.Title = in.Title
	day.Description = in.Description
	r.s.days[day.ID] = day
	return day, nil
}

// ---- stops -----------------------------------------------------------------

type fakeStopRepo struct{ s *fakeStore }

var _ repo.StopRepo = (*fakeStopRepo)(nil)

func (r *fakeStopRepo) Create(_ context.Context, stop domain.Stop) (domain.Stop, error) {
	if r.s.failStopCreate != nil {
		return domain.Stop{}, r.s.failStopCreate
	}
	stop.ID = uuid.New()
	r.s.seq++
	stop.CreatedAt = time.Unix(int64(r.s.seq), 0)
	r.s.stops[stop.ID] = stop
	return stop, nil
}

func (r *fakeStopRepo) GetByID(_ context.Context, dayID, stopID uuid.UUID) (domain.Stop, error) {
	stop, ok := r.s.stops[stopID]
	if !ok || stop.DayID != dayID {
		return domain.Stop{}, notFound("stop")
	}
	return stop, nil
}

func (r *fakeStopRepo) ListByDay(_ context.Context, dayID uuid.UUID) ([]domain.Stop, error) {
	var stops []domain.Stop
	for _, stop := range r.s.stops {
		if stop.DayID == dayID {
			stops = append(stops, stop)
		}
	}
	sort.Slice(stops, func(i, j int) bool {
		if stops[i].SortOrder != stops[j].SortOrder {
			return stops[i].SortOrder < stops[j].SortOrder
		}
		return stops[i].CreatedAt.Before(stops[j].CreatedAt)
	})
	return stops, nil
}

func (r *fakeStopRepo) Update(_ context.Context, in domain.Stop) (domain.Stop, error) {
	stop, ok := r.s.stops[in.ID]
	if !ok {
		return domain.Stop{}, notFound("stop")
	}
	in.DayID = stop.DayID
	in.CreatedAt = stop.CreatedAt
	r.s.stops[in.ID] = in
	return in, nil
}

// ---- photos ----------------------------------------------------------------

type fakePhotoRepo struct{ s *fakeStore }

var _ repo.PhotoRepo = (*fakePhotoRepo)(nil)

func (r *fakePhotoRepo) Create(_ context.Context, photo domain.ItineraryPhoto) (domain.ItineraryPhoto, error) {
	if r.s.failPhotoCreate != nil {
		return domain.ItineraryPhoto{}, r.s.failPhotoCreate
	}
	photo.ID = uuid.New()
	photo.UploadedAt = time.Now()
	r.s.photos[photo.ID] = photo
	return photo, nil
}

func (r *fakePhotoRepo) ListByItinerary(_ context.Context, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error) {
	var photos []domain.ItineraryPhoto
	for _, photo := range r.s.photos {
		if photo.ItineraryID == itineraryID {
			photos = append(photos, photo)
		}
	}
	return photos, nil
}

func (r *fakePhotoRepo) Delete(_ context.Context, itineraryID, photoID uuid.UUID) error {
	photo, ok := r.s.photos[photoID]
	if !ok || photo.ItineraryID != itineraryID {
		return notFound("photo")
	}
	delete(r.s.photos, photoID)
	return nil
}

// ---- reviews ---------------------------------------------------------------

type fakeReviewRepo struct{ s *fakeStore }

var _ repo.ReviewRepo = (*fakeReviewRepo)(nil)

func (r *fakeReviewRepo) Create(_ context.Context, review domain.Review) (domain.Review, error) {
	for _, existing := range r.s.reviews {
		if existing.UserID == review.UserID && existing.ItineraryID == review.ItineraryID {
			return domain.Review{}, fmt.Errorf("fake: already reviewed: %w", domain.ErrDuplicate)
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	r.s.reviews[review.ID] = review
	return review, nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, itineraryID, reviewID uuid.UUID) (domain.Review, error) {
	review, ok := r.s.reviews[reviewID]
	if !ok || review.ItineraryID != itineraryID {
		return domain.Review{}, notFound("review")
	}
	return review, nil
}

func (r *fakeReviewRepo) ListByItinerary(_ context.Context, itineraryID uuid.UUID) ([]domain.Review, error) {
	var reviews []domain.Review
	for _, review := range r.s.reviews {
		if review.ItineraryID == itineraryID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func (r *fakeReviewRepo) Update(_ context.Context, in domain.Review) (domain.Review, error) {
	review, ok := r.s.reviews[in.ID]
	if !ok {
		return domain.Review{}, notFound("review")
	}
	review.Rating = in.Rating
	review.Comment = in.Comment
	review.UpdatedAt = time.Now()
	r.s.reviews[review.ID] = review
	return review, nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, itineraryID, reviewID uuid.UUID) error {
	review, ok := r.s.reviews[reviewID]
	if !ok || review.ItineraryID != itineraryID {
		return notFound("review")
	}
	delete(r.s.reviews, reviewID)
	return nil
}

func (r *fakeReviewRepo) AverageRating(_ context.Context, itineraryID uuid.UUID) (float64, error) {
	var sum, n float64
	for _, review := range r.s.reviews {
		if review.ItineraryID == itineraryID {
			sum += float64(review.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

// ---- reset tokens ----------------------------------------------------------

type fakeTokenRepo struct{ s *fakeStore }

var _ repo.ResetTokenRepo = (*fakeTokenRepo)(nil)

func (r *fakeTokenRepo) Create(_ context.Context, token domain.PasswordResetToken) (domain.PasswordResetToken, error) {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	r.s.tokens[token.ID] = token
	return token, nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, value string) (domain.PasswordResetToken, error) {
	for _, token := range r.s.tokens {
		if token.Token == value {
			return token, nil
		}
	}
	return domain.PasswordResetToken{}, notFound("token")
}

func (r *fakeTokenRepo) InvalidateForUser(_ context.Context, userID uuid.UUID) error {
	for id, token := range r.s.tokens {
		if token.UserID == userID && !token.Used {
			token.Used = true
			r.s.tokens[id] = token
		}
	}
	return nil
}

func (r *fakeTokenRepo) MarkUsed(_ context.Context, id uuid.UUID) error {
	token, ok := r.s.tokens[id]
	if !ok {
		return notFound("token")
	}
	token.Used = true
	r.s.tokens[id] = token
	return nil
}
