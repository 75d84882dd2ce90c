package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyago/trip-planner/backend/internal/domain"
)

// ResetTokenRepo defines the persistence operations for password reset
// tokens. Issuing and redeeming run inside the same transaction as the
// surrounding user-state changes.
type ResetTokenRepo interface {
	// Create inserts a new token row and returns the persisted record.
	Create(ctx context.Context, token domain.PasswordResetToken) (domain.PasswordResetToken, error)

	// GetByToken retrieves a token row by its opaque token value.
	// Returns domain.ErrNotFound when the value is unknown.
	GetByToken(ctx context.Context, token string) (domain.PasswordResetToken, error)

	// InvalidateForUser marks every unused token of the user as used.
	// Called before issuing a new token so at most one stays active.
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error

	// MarkUsed flags a single token as consumed.
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// pgResetTokenRepo is the Postgres implementation of ResetTokenRepo.
type pgResetTokenRepo struct {
	db db
}

// NewResetTokenRepo constructs a ResetTokenRepo backed by the provided db
// connection.
func NewResetTokenRepo(db db) ResetTokenRepo {
	return &pgResetTokenRepo{db: db}
}

const tokenColumns = `id, user_id, token, expires_at, used, created_at`

func (r *pgResetTokenRepo) Create(ctx context.Context, token domain.PasswordResetToken) (domain.PasswordResetToken, error) {
	q := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES (@user_id, @token, @expires_at)
		RETURNING ` + tokenColumns

	args := pgx.NamedArgs{
		"user_id":    token.UserID,
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	}

	result, err := scanResetToken(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.PasswordResetToken{}, fmt.Errorf("repo.ResetTokenRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgResetTokenRepo) GetByToken(ctx context.Context, token string) (domain.PasswordResetToken, error) {
	q := `SELECT ` + tokenColumns + ` FROM password_reset_tokens WHERE token = @token`

	result, err := scanResetToken(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}))
	if err != nil {
		return domain.PasswordResetToken{}, fmt.Errorf("repo.ResetTokenRepo.GetByToken: %w", err)
	}
	return result, nil
}

func (r *pgResetTokenRepo) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	q := `UPDATE password_reset_tokens SET used = true WHERE user_id = @user_id AND used = false`

	// Zero rows affected is fine: the user may have no outstanding tokens.
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID}); err != nil {
		return fmt.Errorf("repo.ResetTokenRepo.InvalidateForUser: %w", err)
	}
	return nil
}

func (r *pgResetTokenRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE password_reset_tokens SET used = true WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ResetTokenRepo.MarkUsed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ResetTokenRepo.MarkUsed: %w", domain.ErrNotFound)
	}
	return nil
}

// scanResetToken maps a single database row into a domain.PasswordResetToken.
func scanResetToken(s scanner) (domain.PasswordResetToken, error) {
	var (
		t      domain.PasswordResetToken
		id     pgtype.UUID
		userID pgtype.UUID
	)

	err := s.Scan(&id, &userID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapPgError(err)
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	return t, nil
}
