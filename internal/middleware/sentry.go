package middleware

import (
	"fmt"
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/logger"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Sentry attaches a per-request hub to the request context and turns panics
// into a 500 response. Events are dropped when no DSN was configured.
func Sentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		ctx := sentry.SetHubOnContext(c.Request.Context(), hub)
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(ctx, r)
				logger.Error().
					Str("panic", fmt.Sprint(r)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("Recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			}
		}()

		c.Next()
	}
}

func captureException(c *gin.Context, err error) {
	hub := sentry.GetHubFromContext(c.Request.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", c.FullPath())
		scope.SetExtra("method", c.Request.Method)
		if identity, ok := GetIdentity(c); ok {
			scope.SetUser(sentry.User{ID: identity.UserID.String()})
		}
		hub.CaptureException(err)
	})
}
