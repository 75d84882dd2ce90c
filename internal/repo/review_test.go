package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

func TestReviewRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-owner@example.com")
	reviewer := createTestUser(t, tx, "reviewer@example.com")
	r := repo.NewReviewRepo(tx)

	got, err := r.Create(ctx, domain.Review{
		UserID:      reviewer.ID,
		ItineraryID: it.ID,
		Rating:      4,
		Comment:     "Great pacing, day two was a highlight",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, reviewer.ID, got.UserID)
	assert.Equal(t, it.ID, got.ItineraryID)
	assert.Equal(t, 4, got.Rating)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestReviewRepo_Create_DuplicatePerUser(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-dup-owner@example.com")
	reviewer := createTestUser(t, tx, "review-dup@example.com")
	r := repo.NewReviewRepo(tx)

	_, err := r.Create(ctx, domain.Review{UserID: reviewer.ID, ItineraryID: it.ID, Rating: 5})
	require.NoError(t, err)

	_, err = r.Create(ctx, domain.Review{UserID: reviewer.ID, ItineraryID: it.ID, Rating: 1})

	assert.ErrorIs(t, err, domain.ErrDuplicate, "one review per user per itinerary")
}

func TestReviewRepo_ListByItinerary(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-list-owner@example.com")
	first := createTestUser(t, tx, "review-list-1@example.com")
	second := createTestUser(t, tx, "review-list-2@example.com")
	r := repo.NewReviewRepo(tx)

	_, err := r.Create(ctx, domain.Review{UserID: first.ID, ItineraryID: it.ID, Rating: 3})
	require.NoError(t, err)
	_, err = r.Create(ctx, domain.Review{UserID: second.ID, ItineraryID: it.ID, Rating: 5})
	require.NoError(t, err)

	reviews, err := r.ListByItinerary(ctx, it.ID)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
}

func TestReviewRepo_Update(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-update-owner@example.com")
	reviewer := createTestUser(t, tx, "review-update@example.com")
	r := repo.NewReviewRepo(tx)

	created, err := r.Create(ctx, domain.Review{UserID: reviewer.ID, ItineraryID: it.ID, Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	created.Rating = 4
	created.Comment = "Better on a second look"

	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "Better on a second look", updated.Comment)
}

func TestReviewRepo_Delete(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-delete-owner@example.com")
	reviewer := createTestUser(t, tx, "review-delete@example.com")
	r := repo.NewReviewRepo(tx)

	created, err := r.Create(ctx, domain.Review{UserID: reviewer.ID, ItineraryID: it.ID, Rating: 3})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, it.ID, created.ID))

	_, err = r.GetByID(ctx, it.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepo_Delete_NotFound(t *testing.T) {
	tx := newTestTx(t)
	it := createTestItinerary(t, tx, "review-delete-missing@example.com")
	r := repo.NewReviewRepo(tx)

	err := r.Delete(context.Background(), it.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepo_AverageRating(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	it := createTestItinerary(t, tx, "review-avg-owner@example.com")
	first := createTestUser(t, tx, "review-avg-1@example.com")
	second := createTestUser(t, tx, "review-avg-2@example.com")
	r := repo.NewReviewRepo(tx)

	_, err := r.Create(ctx, domain.Review{UserID: first.ID, ItineraryID: it.ID, Rating: 2})
	require.NoError(t, err)
	_, err = r.Create(ctx, domain.Review{UserID: second.ID, ItineraryID: it.ID, Rating: 5})
	require.NoError(t, err)

	avg, err := r.AverageRating(ctx, it.ID)

	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 1e-9)
}

func TestReviewRepo_AverageRating_NoReviews(t *testing.T) {
	tx := newTestTx(t)
	it := createTestItinerary(t, tx, "review-avg-empty@example.com")
	r := repo.NewReviewRepo(tx)

	avg, err := r.AverageRating(context.Background(), it.ID)

	require.NoError(t, err)
	assert.Zero(t, avg, "no reviews averages to zero, not an error")
}
