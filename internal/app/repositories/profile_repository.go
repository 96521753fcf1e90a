package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// ProfileRepository handles database operations for student profiles
type ProfileRepository struct {
	store recordstore.Store
	now   func() time.Time
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store recordstore.Store) *ProfileRepository {
	return &ProfileRepository{store: store, now: time.Now}
}

// Create inserts a profile; an email already in use yields ErrEmailAlreadyExists
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := r.now().UTC()
	rows, err := r.store.Insert(ctx, recordstore.Profiles, recordstore.Row{
		"email":          profile.Email,
		"full_name":      profile.FullName,
		"password_hash":  profile.PasswordHash,
		"email_verified": profile.EmailVerified,
		"created_at":     now,
		"updated_at":     now,
	})
	if err != nil {
		if errors.Is(err, recordstore.ErrConflict) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return recordstore.Decode(rows[0], profile)
}

// Delete removes a profile by ID
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Delete(ctx, recordstore.Profiles, recordstore.Eq("id", id)); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) getOne(ctx context.Context, filter recordstore.Filter) (*models.Profile, error) {
	row, err := r.store.FindOne(ctx, recordstore.Profiles, filter)
	if err != nil {
		return nil, notFound(err, apperrors.ErrProfileNotFound)
	}
	var profile models.Profile
	if err := recordstore.Decode(row, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.getOne(ctx, recordstore.Eq("id", id))
}

// GetByEmail retrieves a profile by its (lowercased) email
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, recordstore.Eq("email", email))
}

// GetNames returns full names keyed by profile ID
func (r *ProfileRepository) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.store.Find(ctx, recordstore.Profiles, recordstore.Where(recordstore.In("id", ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, row := range rows {
		out[row.String("id")] = row.String("full_name")
	}
	return out, nil
}

// MarkEmailVerified flags the profile's email as confirmed
func (r *ProfileRepository) MarkEmailVerified(ctx context.Context, id string) error {
	rows, err := r.store.Update(ctx, recordstore.Profiles, recordstore.Row{
		"email_verified": true,
		"updated_at":     r.now().UTC(),
	}, recordstore.Eq("id", id))
	if err != nil {
		return fmt.Errorf("failed to verify profile email: %w", err)
	}
	if len(rows) == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}
