package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account with a phone number, email and password. The phone number must then be verified with an OTP.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Registration successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Phone number or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", resp.UserID).Msg("User registered")
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(resp, resp.Message))
}

// Login starts a phone login
// @Summary Request a login OTP
// @Description Sends a one-time password to the phone number. Unknown numbers get an account provisioned on the fly.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Phone number"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "OTP sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid phone number"
// @Failure 429 {object} dto.ErrorResponse "Too many OTP requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(resp, resp.Message))
}

// VerifyOTP exchanges an OTP for a token pair
// @Summary Verify OTP
// @Description Verifies the one-time password and returns an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Phone number and code"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/verify-otp [post]
func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.VerifyOTP(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(resp, "Login successful"))
}

// RefreshToken rotates a refresh token
// @Summary Refresh access token
// @Description Revokes the refresh token and issues a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Logout revokes a refresh token
// @Summary Logout
// @Description Revokes the supplied refresh token. Always succeeds for an authenticated caller.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse{data=dto.MessageData} "Successfully logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	identity, ok := middleware.GetIdentity(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.LogoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleBindError(ctx, err)
		return
	}

	c.authService.Logout(ctx.Request.Context(), identity, req.RefreshToken)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageData{Message: "Successfully logged out"}))
}

// ResetPassword sets a new password
// @Summary Reset password
// @Description Sets a new password after proving ownership of the phone number with an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Phone number, code and new password"
// @Success 200 {object} dto.APIResponse{data=dto.MessageData} "Password reset"
// @Failure 400 {object} dto.ErrorResponse "Invalid code or password"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/password-reset [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageData{Message: "Password has been reset"}))
}
