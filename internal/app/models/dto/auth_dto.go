package dto

import (
	"time"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// SignUpRequest represents a new account registration
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jdoe@aggies.ncat.edu"`
	Password string `json:"password" binding:"required" example:"aggiepride"`
	FullName string `json:"full_name" binding:"required,max=100" example:"Jordan Doe"`
}

// SignInRequest represents sign-in credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jdoe@aggies.ncat.edu"`
	Password string `json:"password" binding:"required" example:"aggiepride"`
}

// VerifyCodeRequest redeems the emailed one-time code
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"jdoe@aggies.ncat.edu"`
	Code  string `json:"code" binding:"required,len=6,numeric" example:"482913"`
}

// ResendCodeRequest asks for a fresh verification code
type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"jdoe@aggies.ncat.edu"`
}

// ProfileResponse is the public view of a profile
type ProfileResponse struct {
	ID            string    `json:"id" example:"2b1f6f0e-8c1d-4a57-9a55-0c0f4f1d9e21"`
	Email         string    `json:"email" example:"jdoe@aggies.ncat.edu"`
	FullName      string    `json:"full_name" example:"Jordan Doe"`
	EmailVerified bool      `json:"email_verified" example:"true"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProfileResponse maps a profile, leaving out the password hash
func NewProfileResponse(p *models.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		EmailVerified: p.EmailVerified,
		CreatedAt:     p.CreatedAt,
	}
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresIn   int       `json:"expires_in" example:"86400"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SessionResponse is returned after sign-in or verification
type SessionResponse struct {
	Token   TokenResponse    `json:"token"`
	Profile *ProfileResponse `json:"profile"`
}

// SignUpResponse confirms registration and where the code was sent
type SignUpResponse struct {
	Profile *ProfileResponse `json:"profile"`
	Message string           `json:"message" example:"Check your email for a verification code"`
}

// AccountResponse is the account page payload
type AccountResponse struct {
	Profile     *ProfileResponse `json:"profile"`
	ReviewCount int64            `json:"review_count" example:"4"`
}
