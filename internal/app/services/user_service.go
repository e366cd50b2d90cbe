package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserService manages the caller's own profile
type UserService struct {
	userRepo UserStore
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserStore, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// UpdateProfile applies the non-nil fields of req
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.County != nil {
		user.County = strings.TrimSpace(*req.County)
	}
	if req.ProfilePic != nil {
		user.ProfilePic = strings.TrimSpace(*req.ProfilePic)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !validation.IsValidEmail(email) {
			return nil, apperrors.NewValidationError("email", "Enter a valid email address")
		}
		user.Email = email
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrConflict, "A user with this email already exists").WithField("email")
		}
		return nil, err
	}

	s.logger.Debug().Str("userID", userID.String()).Msg("Profile updated")
	return dto.NewUserResponse(user), nil
}
