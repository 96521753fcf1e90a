package services

import (
	"context"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
)

// Account is the signed-in user's profile summary
type Account struct {
	Profile     *models.Profile
	ReviewCount int64
}

// AccountService serves the account page
type AccountService struct {
	profiles *repositories.ProfileRepository
	reviews  *repositories.ReviewRepository
}

// NewAccountService creates a new account service
func NewAccountService(repos *repositories.Repositories) *AccountService {
	return &AccountService{
		profiles: repos.ProfileRepository,
		reviews:  repos.ReviewRepository,
	}
}

// Get returns the profile and how many reviews it has written
func (s *AccountService) Get(ctx context.Context, userID string) (*Account, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.reviews.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Account{Profile: profile, ReviewCount: count}, nil
}
