package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// VerificationCodeRepository stores one-time email verification codes
type VerificationCodeRepository struct {
	store recordstore.Store
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(store recordstore.Store) *VerificationCodeRepository {
	return &VerificationCodeRepository{store: store}
}

// Create stores a new code for email
func (r *VerificationCodeRepository) Create(ctx context.Context, email, code string, expiresAt time.Time) error {
	_, err := r.store.Insert(ctx, recordstore.VerificationCodes, recordstore.Row{
		"email":      email,
		"code":       code,
		"expires_at": expiresAt.UTC(),
		"used_at":    nil,
	})
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

// DeleteByEmail removes every code issued to email
func (r *VerificationCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.store.Delete(ctx, recordstore.VerificationCodes, recordstore.Eq("email", email)); err != nil {
		return fmt.Errorf("failed to delete verification codes: %w", err)
	}
	return nil
}

// FindUsable returns the newest unused, unexpired code matching email and code
func (r *VerificationCodeRepository) FindUsable(ctx context.Context, email, code string, now time.Time) (*models.VerificationCode, error) {
	rows, err := r.store.Find(ctx, recordstore.VerificationCodes, recordstore.Where(
		recordstore.Eq("email", email),
		recordstore.Eq("code", code),
		recordstore.Eq("used_at", nil),
	).OrderBy(recordstore.Desc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	codes, err := recordstore.DecodeAll[models.VerificationCode](rows)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		if c.IsUsable(now) {
			return &c, nil
		}
	}
	return nil, apperrors.ErrInvalidEmailToken
}

// MarkUsed consumes a code so it cannot be redeemed twice
func (r *VerificationCodeRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.store.Update(ctx, recordstore.VerificationCodes, recordstore.Row{"used_at": at.UTC()}, recordstore.Eq("id", id))
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	return nil
}
