package dto

import (
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID          string     `json:"id" example:"0b8f0c1e-4f67-4a55-9b8f-59cf7c3b33a3"`
	PhoneNumber string     `json:"phone_number" example:"+254712345678"`
	Email       string     `json:"email" example:"amani@example.com"`
	FirstName   string     `json:"first_name" example:"Amani"`
	LastName    string     `json:"last_name" example:"Otieno"`
	County      string     `json:"county" example:"Nairobi"`
	ProfilePic  string     `json:"profile_pic,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewUserResponse maps a user model onto its response
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID.String(),
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		County:      u.County,
		ProfilePic:  u.ProfilePic,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// UpdateProfileRequest changes profile fields; nil fields are left untouched
type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=150"`
	LastName   *string `json:"last_name" binding:"omitempty,max=150"`
	County     *string `json:"county" binding:"omitempty,max=100"`
	ProfilePic *string `json:"profile_pic" binding:"omitempty,max=2048"`
	Email      *string `json:"email" binding:"omitempty,email,max=254"`
}
