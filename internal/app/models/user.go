package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account keyed by phone number
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number" example:"+254712345678"`
	Email        string     `json:"email" db:"email" example:"amani@example.com"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name" example:"Amani"`
	LastName     string     `json:"last_name" db:"last_name" example:"Otieno"`
	County       string     `json:"county" db:"county" example:"Nairobi"`
	ProfilePic   string     `json:"profile_pic" db:"profile_pic"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshToken is an opaque, revocable token exchanged for new access tokens
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     uuid.UUID `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
}
