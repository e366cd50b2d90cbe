package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("name", "name is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"duplicate squad", apperrors.NewCustomError(apperrors.ErrDuplicateSquad, "dup"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"sole leader", apperrors.ErrSoleLeader, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"otp", apperrors.ErrInvalidOTP, http.StatusBadRequest, dto.ErrorCodeInvalidOTP},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"forbidden", apperrors.NewForbiddenError("no"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"squad missing", fmt.Errorf("wrapped: %w", apperrors.ErrSquadNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"member twice", apperrors.ErrAlreadyMember, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"conflict", apperrors.NewConflictError("retry"), http.StatusConflict, dto.ErrorCodeConflict},
		{"serialization", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"}), http.StatusConflict, dto.ErrorCodeConflict},
		{"throttled", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ErrorStatus(tt.err)
			if status != tt.status || detail.Code != tt.code {
				t.Errorf("ErrorStatus = %d %s, want %d %s", status, detail.Code, tt.status, tt.code)
			}
		})
	}
}

func TestErrorStatusCarriesCustomContext(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrDuplicateSquad, `A squad "X" already exists`).
		WithField("registration_center").
		WithDetails(map[string]interface{}{"squad_id": "abc"})

	_, detail := ErrorStatus(err)
	if detail.Message != `A squad "X" already exists` || detail.Field != "registration_center" {
		t.Errorf("unexpected detail %+v", detail)
	}
	details, ok := detail.Details.(map[string]interface{})
	if !ok || details["squad_id"] != "abc" {
		t.Errorf("details = %#v", detail.Details)
	}
}

func TestHandleAPIErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleAPIError(c, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("internal error text leaked to the client")
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Error == nil {
		t.Errorf("unexpected envelope %s", w.Body.String())
	}
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT()
	m := NewAuthMiddleware(jwtService, zerolog.Nop())

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, ok := RequireUserID(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "+254712345678")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + pair.AccessToken, http.StatusOK},
		{"bare token", pair.AccessToken, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK && w.Body.String() != userID.String() {
				t.Errorf("identity = %s", w.Body.String())
			}
		})
	}
}

func TestPhoneBindingRule(t *testing.T) {
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))
		return w
	}

	if w := post(`{"phone_number":"+254712345678"}`); w.Code != http.StatusNoContent {
		t.Errorf("valid phone rejected: %d %s", w.Code, w.Body.String())
	}

	w := post(`{"phone_number":"call me"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid phone accepted: %d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Field != "phone_number" {
		t.Errorf("field = %q, want phone_number", body.Error.Field)
	}

	if w := post(`{`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if line["level"] != "warn" || line["path"] != "/missing" || line["status"] != float64(404) {
		t.Errorf("unexpected log line %v", line)
	}
}

func TestSentryRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(Sentry())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}
