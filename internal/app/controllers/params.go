// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseIDParam reads a uuid path parameter, writing a 400 when it is malformed
func parseIDParam(ctx *gin.Context, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(paramName))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+paramName).
			WithField(paramName).
			WithDetails("ID must be a valid UUID")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}
