package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

func TestResetTokenRepo_CreateAndGet(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := createTestUser(t, tx, "token@example.com")
	r := repo.NewResetTokenRepo(tx)

	created, err := r.Create(ctx, domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     "opaque-random-value",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, created.Used)

	got, err := r.GetByToken(ctx, "opaque-random-value")

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, got.Active(time.Now()))
}

func TestResetTokenRepo_GetByToken_NotFound(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewResetTokenRepo(tx)

	_, err := r.GetByToken(context.Background(), "never-issued")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResetTokenRepo_InvalidateForUser(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := createTestUser(t, tx, "invalidate@example.com")
	r := repo.NewResetTokenRepo(tx)

	_, err := r.Create(ctx, domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, r.InvalidateForUser(ctx, user.ID))

	got, err := r.GetByToken(ctx, "old-token")
	require.NoError(t, err)
	assert.True(t, got.Used, "prior tokens are burned when a new one is requested")
	assert.False(t, got.Active(time.Now()))
}

func TestResetTokenRepo_MarkUsed(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := createTestUser(t, tx, "markused@example.com")
	r := repo.NewResetTokenRepo(tx)

	created, err := r.Create(ctx, domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     "single-use",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, r.MarkUsed(ctx, created.ID))

	got, err := r.GetByToken(ctx, "single-use")
	require.NoError(t, err)
	assert.True(t, got.Used)
}
