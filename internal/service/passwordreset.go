package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/repo"
)

// Mailer sends a single email. Implemented by the gomail-backed sender in
// the mailer package; handler tests inject a recording fake.
type Mailer interface {
	Send(to, subject, body string) error
}

// PasswordResetService implements the request/validate/confirm reset flow.
//
// Request never reveals whether an email is registered: unknown addresses
// get the same success response as known ones. Issuing a token invalidates
// the user's prior unused tokens, so at most one is active at a time.
type PasswordResetService struct {
	reads        repo.Tx
	runner       repo.TxRunner
	mailer       Mailer
	resetURLBase string
	tokenTTL     time.Duration
	log          *slog.Logger
}

// NewPasswordResetService constructs a PasswordResetService.
// resetURLBase is the frontend URL the token is appended to in the email.
func NewPasswordResetService(reads repo.Tx, runner repo.TxRunner, mailer Mailer, resetURLBase string, tokenTTL time.Duration, log *slog.Logger) *PasswordResetService {
	return &PasswordResetService{
		reads:        reads,
		runner:       runner,
		mailer:       mailer,
		resetURLBase: resetURLBase,
		tokenTTL:     tokenTTL,
		log:          log,
	}
}

// Request issues a reset token for the account registered under email and
// mails the reset link. An unknown email is a silent success. A mail
// delivery failure is reported to the caller, but the token state stays
// consistent either way.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.reads.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Do not reveal that the address is unregistered.
			s.log.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("service.PasswordResetService.Request: %w", err)
	}

	tokenValue, err := newResetTokenValue()
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Request: %w", err)
	}

	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		if err := tx.ResetTokens.InvalidateForUser(ctx, user.ID); err != nil {
			return err
		}
		_, err := tx.ResetTokens.Create(ctx, domain.PasswordResetToken{
			UserID:    user.ID,
			Token:     tokenValue,
			ExpiresAt: time.Now().Add(s.tokenTTL),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Request: %w", err)
	}

	// Mail after commit: a delivery failure must not roll back the token.
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Use this link within %s to choose a new password:\n%s/%s\n\n"+
			"If you did not request a reset you can ignore this email.",
		s.tokenTTL, s.resetURLBase, tokenValue)
	if err := s.mailer.Send(user.Email, "Password reset", body); err != nil {
		s.log.ErrorContext(ctx, "password reset email failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("service.PasswordResetService.Request: send email: %w", err)
	}
	return nil
}

// Validate checks that the token exists, is unused, and is unexpired.
// Used by the frontend to vet a token before showing the new-password form.
func (s *PasswordResetService) Validate(ctx context.Context, tokenValue string) error {
	token, err := s.reads.ResetTokens.GetByToken(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Validate: %w", err)
	}
	if !token.Active(time.Now()) {
		return fmt.Errorf("service.PasswordResetService.Validate: %w", domain.ErrNotFound)
	}
	return nil
}

// Confirm redeems an active token: the user's password hash is replaced and
// the token marked used, in one transaction.
func (s *PasswordResetService) Confirm(ctx context.Context, tokenValue, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	token, err := s.reads.ResetTokens.GetByToken(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Confirm: %w", err)
	}
	if !token.Active(time.Now()) {
		return fmt.Errorf("service.PasswordResetService.Confirm: %w", domain.ErrNotFound)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Confirm: %w", err)
	}

	err = s.runner.InTx(ctx, func(tx repo.Tx) error {
		if err := tx.Users.UpdatePassword(ctx, token.UserID, hash); err != nil {
			return err
		}
		return tx.ResetTokens.MarkUsed(ctx, token.ID)
	})
	if err != nil {
		return fmt.Errorf("service.PasswordResetService.Confirm: %w", err)
	}
	return nil
}

// newResetTokenValue returns a 64-hex-char random token.
func newResetTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
