package middleware

import (
	"errors"
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/dberrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel found in the chain wins
var errorMappings = []errorMapping{
	// 400
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrDuplicateSquad, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "A joinable squad already exists for this center and date"},
	{apperrors.ErrSoleLeader, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Cannot leave squad while sole leader"},
	{apperrors.ErrInvalidOTP, http.StatusBadRequest, dto.ErrorCodeInvalidOTP, "Invalid OTP"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	// 401
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},

	// 403
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	// 404
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrSquadNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Squad not found"},
	{apperrors.ErrMembershipNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Membership not found"},
	{apperrors.ErrCenterNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Center not found"},
	{apperrors.ErrEventNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Event not found"},
	{apperrors.ErrInviteNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Invite not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	// 409
	{apperrors.ErrAlreadyMember, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already a member of this squad"},
	{apperrors.ErrPhoneAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Phone number already registered"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	// 429
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests, "Too many requests"},
}

// ErrorStatus maps err onto an HTTP status and error detail
func ErrorStatus(err error) (int, *dto.ErrorDetail) {
	status, detail := http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")

	matched := false
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status, detail = m.status, dto.NewErrorDetail(m.code, m.message)
			matched = true
			break
		}
	}

	if !matched {
		switch {
		case dberrors.IsSerializationFailure(err):
			return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "The request conflicted with a concurrent update. Please retry.")
		case dberrors.IsUniqueViolation(err):
			return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
		}
		return status, detail
	}

	if ce, ok := apperrors.AsCustom(err); ok {
		if ce.Message != "" {
			detail.Message = ce.Message
		}
		if ce.Field != "" {
			detail.WithField(ce.Field)
		}
		if ce.Code != "" {
			detail.Code = dto.ErrorCode(ce.Code)
		}
		if len(ce.Details) > 0 {
			detail.WithDetails(ce.Details)
		}
	}
	return status, detail
}

// --- Central Error Handling Middleware/Function ---

// HandleAPIError writes the error envelope for err. Unexpected errors are
// logged and reported to Sentry; their text never reaches the client.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorStatus(err)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
		captureException(c, err)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError writes a 400 for a request that failed binding or validation
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
