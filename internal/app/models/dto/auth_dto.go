package dto

// RegisterRequest creates an account with a password
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+254712345678"`
	Email       string `json:"email" binding:"required,email,max=254" example:"amani@example.com"`
	Password    string `json:"password" binding:"required,min=8,max=128" example:"Str0ngPass!"`
	FirstName   string `json:"first_name" binding:"omitempty,max=150" example:"Amani"`
	LastName    string `json:"last_name" binding:"omitempty,max=150" example:"Otieno"`
	County      string `json:"county" binding:"omitempty,max=100" example:"Nairobi"`
}

// RegisterResponse is returned after registration; OTP is only set when codes are exposed
type RegisterResponse struct {
	Message     string `json:"message" example:"Registration successful. Please verify your phone number."`
	PhoneNumber string `json:"phone_number" example:"+254712345678"`
	UserID      string `json:"user_id" example:"0b8f0c1e-4f67-4a55-9b8f-59cf7c3b33a3"`
	OTP         string `json:"otp,omitempty" example:"123456"`
}

// LoginRequest starts a phone login
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+254712345678"`
}

// LoginResponse reports whether the account was provisioned by this login
type LoginResponse struct {
	Message     string `json:"message" example:"OTP sent successfully"`
	PhoneNumber string `json:"phone_number" example:"+254712345678"`
	OTP         string `json:"otp,omitempty" example:"123456"`
	UserCreated bool   `json:"user_created" example:"false"`
}

// VerifyOTPRequest exchanges a code for a token pair
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+254712345678"`
	OTP         string `json:"otp" binding:"required,numeric,min=4,max=8" example:"123456"`
}

// TokenResponse holds an issued token pair and the authenticated user
type TokenResponse struct {
	AccessToken      string        `json:"access_token"`
	RefreshToken     string        `json:"refresh_token"`
	TokenType        string        `json:"token_type" example:"Bearer"`
	ExpiresIn        int           `json:"expires_in" example:"3600"`
	RefreshExpiresIn int           `json:"refresh_expires_in" example:"2592000"`
	User             *UserResponse `json:"user,omitempty"`
}

// RefreshTokenRequest rotates a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest revokes a refresh token; an empty body is accepted
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequest sets a new password after proving phone ownership
type PasswordResetRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone" example:"+254712345678"`
	OTP         string `json:"otp" binding:"required,numeric" example:"123456"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128" example:"N3wStr0ngPass!"`
}
