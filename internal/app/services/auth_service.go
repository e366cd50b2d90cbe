package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/auth"
	"github.com/Simoh8/pamoja-vote/internal/pkg/otp"
	"github.com/Simoh8/pamoja-vote/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// placeholderEmailDomain is used for accounts created by phone login
const placeholderEmailDomain = "temp.local"

// AuthService handles phone based authentication and token issuance
type AuthService struct {
	userRepo   UserStore
	tokenRepo  TokenStore
	jwtService *auth.JWTService
	otpChecker otp.Checker
	limiter    otp.Limiter
	exposeOTP  bool
	logger     zerolog.Logger
	now        func() time.Time
}

// AuthOptions carries the OTP collaborators of AuthService
type AuthOptions struct {
	Checker otp.Checker
	Limiter otp.Limiter
	// ExposeOTP returns the issued code in responses; meant for development only
	ExposeOTP bool
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserStore,
	tokenRepo TokenStore,
	jwtService *auth.JWTService,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	if opts.Limiter == nil {
		opts.Limiter = otp.NoopLimiter{}
	}
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		otpChecker: opts.Checker,
		limiter:    opts.Limiter,
		exposeOTP:  opts.ExposeOTP,
		logger:     logger,
		now:        time.Now,
	}
}

func normalizedPhone(raw string) (string, error) {
	phone := validation.NormalizePhone(raw)
	if !validation.IsValidPhone(phone) {
		return "", apperrors.NewValidationError("phone_number", "Enter a valid phone number")
	}
	return phone, nil
}

// issueCode throttles and issues a code for phone
func (s *AuthService) issueCode(ctx context.Context, phone string) (string, error) {
	allowed, err := s.limiter.Allow(ctx, phone)
	if err != nil {
		// A broken limiter store must not lock everyone out
		s.logger.Warn().Err(err).Msg("OTP limiter unavailable, allowing request")
	} else if !allowed {
		return "", apperrors.NewCustomError(apperrors.ErrTooManyRequests, "Too many verification requests. Please try again later.")
	}

	code, err := s.otpChecker.Issue(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("failed to issue verification code: %w", err)
	}
	if !s.exposeOTP {
		return "", nil
	}
	return code, nil
}

// Register creates an account with a password and sends a verification code
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	phone, err := normalizedPhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if !validation.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("email", "Enter a valid email address")
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		PhoneNumber:  phone,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		County:       req.County,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPhoneAlreadyExists):
			return nil, apperrors.NewCustomError(apperrors.ErrConflict, "A user with this phone number already exists").WithField("phone_number")
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			return nil, apperrors.NewCustomError(apperrors.ErrConflict, "A user with this email already exists").WithField("email")
		}
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")

	code, err := s.issueCode(ctx, phone)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		Message:     "Registration successful. Please verify your phone number.",
		PhoneNumber: phone,
		UserID:      user.ID.String(),
		OTP:         code,
	}, nil
}

// Login starts a phone login, creating the account on first use
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	phone, err := normalizedPhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	created := false
	_, err = s.userRepo.GetByPhone(ctx, phone)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		created, err = s.provision(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	code, err := s.issueCode(ctx, phone)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Message:     "OTP sent successfully",
		PhoneNumber: phone,
		OTP:         code,
		UserCreated: created,
	}, nil
}

// provision creates a passwordless-by-use account for phone. It reports false
// when a concurrent request created the account first.
func (s *AuthService) provision(ctx context.Context, phone string) (bool, error) {
	placeholder, err := auth.RandomPassword()
	if err != nil {
		return false, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := auth.HashPassword(placeholder)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		PhoneNumber:  phone,
		Email:        fmt.Sprintf("%s@%s", phone, placeholderEmailDomain),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrPhoneAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User provisioned by phone login")
	return true, nil
}

// Verify checks code for phone and returns the matching user
func (s *AuthService) Verify(ctx context.Context, phoneNumber, code string) (*models.User, error) {
	phone, err := normalizedPhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewValidationError("phone_number", "User not found")
		}
		return nil, err
	}

	if err := s.otpChecker.Verify(ctx, phone, code); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidOTP, "Invalid OTP").WithField("otp")
		}
		return nil, err
	}
	return user, nil
}

// VerifyOTP exchanges a valid code for a token pair
func (s *AuthService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.TokenResponse, error) {
	user, err := s.Verify(ctx, req.PhoneNumber, req.OTP)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.generateTokenResponse(ctx, user)
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if _, err := uuid.Parse(refreshToken); err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	token, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if token.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if token.ExpiryDate.Before(s.now()) {
		if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
			s.logger.Warn().Err(err).Str("userID", token.UserID.String()).Msg("Failed to revoke expired refresh token")
		}
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}

	// Rotate so a refresh token can only be used once
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// Logout revokes the given refresh token. Failures are logged, never returned.
func (s *AuthService) Logout(ctx context.Context, identity auth.Identity, refreshToken string) {
	if refreshToken == "" {
		return
	}

	token, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Logout with unknown refresh token")
		return
	}
	if token.UserID != identity.UserID {
		s.logger.Warn().Str("userID", identity.UserID.String()).Msg("Logout with another user's refresh token")
		return
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revoke refresh token on logout")
	}
}

// ResetPassword sets a new password once the phone's code is verified
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.PasswordResetRequest) error {
	if !validation.IsValidPassword(req.NewPassword) {
		return apperrors.NewValidationError("new_password", fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}

	user, err := s.Verify(ctx, req.PhoneNumber, req.OTP)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeAllUserTokens(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to revoke tokens after password reset")
	}
	return nil
}

func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             dto.NewUserResponse(user),
	}, nil
}
