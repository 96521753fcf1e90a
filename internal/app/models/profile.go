package models

import "time"

// Profile is a registered student account
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"password_hash"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VerificationCode is a one-time sign-up code sent by email
type VerificationCode struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsUsable reports whether the code can still be redeemed at now
func (v VerificationCode) IsUsable(now time.Time) bool {
	return v.UsedAt == nil && now.Before(v.ExpiresAt)
}
