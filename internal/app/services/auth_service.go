package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/auth"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
	"github.com/aggiereview/aggiereview/internal/pkg/email"
	"github.com/aggiereview/aggiereview/internal/pkg/validation"
)

// ErrBadCredentials is returned for an unknown email or a wrong password alike
var ErrBadCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")

// AuthConfig holds account policy settings
type AuthConfig struct {
	InstitutionalDomain string
	CodeTTL             time.Duration
	// PasswordCost overrides the bcrypt cost; zero means auth.BcryptCost
	PasswordCost int
}

// SessionResult is a signed-in profile with its access token
type SessionResult struct {
	Profile *models.Profile
	Session *auth.Session
}

// AuthService handles sign-up, email verification and sessions
type AuthService struct {
	profiles   *repositories.ProfileRepository
	codes      *repositories.VerificationCodeRepository
	jwtService *auth.JWTService
	mailer     email.EmailService
	cache      cache.Cache
	config     AuthConfig
	now        func() time.Time
	newCode    func() (string, error)
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	c cache.Cache,
	config AuthConfig,
	logger zerolog.Logger,
) *AuthService {
	if config.InstitutionalDomain == "" {
		config.InstitutionalDomain = validation.InstitutionalDomain
	}
	if config.CodeTTL <= 0 {
		config.CodeTTL = 15 * time.Minute
	}
	if config.PasswordCost == 0 {
		config.PasswordCost = auth.BcryptCost
	}
	return &AuthService{
		profiles:   repos.ProfileRepository,
		codes:      repos.VerificationCodeRepository,
		jwtService: jwtService,
		mailer:     mailer,
		cache:      c,
		config:     config,
		now:        time.Now,
		newCode:    email.GenerateVerificationCode,
		logger:     logger,
	}
}

// validateCredentials applies the account policy shared by sign-up and sign-in
func (s *AuthService) validateCredentials(emailAddr, password string) error {
	if err := validation.ValidateInstitutionalEmail(emailAddr, s.config.InstitutionalDomain); err != nil {
		return err
	}
	return validation.ValidatePassword(password)
}

// SignUp creates an unverified profile and emails a one-time code. When the code
// cannot be stored or sent the profile is removed again, so the same email can
// sign up on the next attempt.
func (s *AuthService) SignUp(ctx context.Context, emailAddr, password, fullName string) (*models.Profile, error) {
	if err := s.validateCredentials(emailAddr, password); err != nil {
		return nil, err
	}
	if err := validation.ValidateFullName(fullName); err != nil {
		return nil, err
	}

	hash, err := auth.HashPasswordWithCost(password, s.config.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Email:        validation.NormalizeEmail(emailAddr),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.issueCode(ctx, profile); err != nil {
		s.discardProfile(ctx, profile)
		return nil, err
	}

	s.logger.Info().Str("profileID", profile.ID).Msg("Profile registered, verification pending")
	return profile, nil
}

func (s *AuthService) discardProfile(ctx context.Context, profile *models.Profile) {
	if err := s.codes.DeleteByEmail(ctx, profile.Email); err != nil {
		s.logger.Warn().Err(err).Str("profileID", profile.ID).Msg("Failed to remove verification codes of abandoned sign-up")
	}
	if err := s.profiles.Delete(ctx, profile.ID); err != nil {
		s.logger.Error().Err(err).Str("profileID", profile.ID).Msg("Failed to remove profile of abandoned sign-up")
	}
}

// ResendCode issues a fresh code for an unverified profile
func (s *AuthService) ResendCode(ctx context.Context, emailAddr string) error {
	profile, err := s.profiles.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		return err
	}
	if profile.EmailVerified {
		return apperrors.NewBadRequestError("This email is already verified")
	}
	return s.issueCode(ctx, profile)
}

func (s *AuthService) issueCode(ctx context.Context, profile *models.Profile) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.codes.Create(ctx, profile.Email, code, s.now().Add(s.config.CodeTTL)); err != nil {
		return err
	}
	if err := s.mailer.SendVerificationCode(profile.Email, profile.FullName, code, s.config.CodeTTL); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// VerifyCode redeems a one-time code, marks the email verified and starts a session
func (s *AuthService) VerifyCode(ctx context.Context, emailAddr, code string) (*SessionResult, error) {
	if err := validation.ValidateVerificationCode(code); err != nil {
		return nil, err
	}
	normalized := validation.NormalizeEmail(emailAddr)

	now := s.now()
	vc, err := s.codes.FindUsable(ctx, normalized, strings.TrimSpace(code), now)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidEmailToken
		}
		return nil, err
	}

	if err := s.codes.MarkUsed(ctx, vc.ID, now); err != nil {
		return nil, err
	}
	if err := s.profiles.MarkEmailVerified(ctx, profile.ID); err != nil {
		return nil, err
	}
	profile.EmailVerified = true

	return s.startSession(profile)
}

// SignIn checks the password of a verified profile and starts a session
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*SessionResult, error) {
	if err := s.validateCredentials(emailAddr, password); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(profile.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !profile.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	return s.startSession(profile)
}

func (s *AuthService) startSession(profile *models.Profile) (*SessionResult, error) {
	session, err := s.jwtService.GenerateToken(profile)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("profileID", profile.ID).Msg("Session started")
	return &SessionResult{Profile: profile, Session: session}, nil
}

// Authenticate validates an access token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	revoked, err := s.cache.Exists(ctx, cache.RevokedTokenPrefix+claims.ID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Token revocation lookup failed")
	} else if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// CurrentSession returns the profile behind a valid access token
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, claims.UserID)
}

// SignOut revokes the token until it would have expired anyway
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, cache.RevokedTokenPrefix+claims.ID, true, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info().Str("profileID", claims.UserID).Msg("Session revoked")
	return nil
}
