package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/auth"
	"github.com/Simoh8/pamoja-vote/internal/pkg/otp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

func newAuthFixture(opts AuthOptions) (*memDB, *AuthService) {
	db := newMemDB()
	if opts.Checker == nil {
		opts.Checker = otp.NewStaticChecker("123456")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "pamoja-vote-test",
	})
	return db, NewAuthService(fakeUsers{db}, fakeTokens{db}, jwtService, opts, zerolog.Nop())
}

func TestLoginProvisionsAccount(t *testing.T) {
	db, svc := newAuthFixture(AuthOptions{ExposeOTP: true})
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{PhoneNumber: "+254 712-345-678"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.UserCreated || resp.OTP != "123456" || resp.PhoneNumber != "+254712345678" {
		t.Errorf("unexpected login response %+v", resp)
	}

	user, err := fakeUsers{db}.GetByPhone(ctx, "+254712345678")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "+254712345678@temp.local" || user.PasswordHash == "" {
		t.Errorf("placeholder account not set up: %+v", user)
	}

	again, _ := svc.Login(ctx, &dto.LoginRequest{PhoneNumber: "+254712345678"})
	if again.UserCreated {
		t.Error("second login should not create an account")
	}
}

func TestLoginHidesCodeWhenNotExposed(t *testing.T) {
	_, svc := newAuthFixture(AuthOptions{})
	resp, err := svc.Login(context.Background(), &dto.LoginRequest{PhoneNumber: "+254712345678"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.OTP != "" {
		t.Errorf("code leaked: %s", resp.OTP)
	}
}

func TestLoginThrottled(t *testing.T) {
	_, svc := newAuthFixture(AuthOptions{Limiter: denyLimiter{}})
	_, err := svc.Login(context.Background(), &dto.LoginRequest{PhoneNumber: "+254712345678"})
	if !errors.Is(err, apperrors.ErrTooManyRequests) {
		t.Errorf("expected throttling, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	db, svc := newAuthFixture(AuthOptions{})
	ctx := context.Background()
	db.addUser("+254712345678")

	if _, err := svc.Verify(ctx, "+254712345678", "000000"); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Errorf("wrong code: got %v", err)
	}
	if _, err := svc.Verify(ctx, "+254799999999", "123456"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("unknown phone: got %v", err)
	}
	user, err := svc.Verify(ctx, "+254712345678", "123456")
	if err != nil || user.PhoneNumber != "+254712345678" {
		t.Errorf("Verify = %+v, %v", user, err)
	}
}

func TestVerifyOTPIssuesRotatingTokens(t *testing.T) {
	db, svc := newAuthFixture(AuthOptions{})
	ctx := context.Background()
	db.addUser("+254712345678")

	tokens, err := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{PhoneNumber: "+254712345678", OTP: "123456"})
	if err != nil {
		t.Fatal(err)
	}
	if tokens.AccessToken == "" || tokens.TokenType != "Bearer" || tokens.User.LastLoginAt == nil {
		t.Errorf("unexpected token response %+v", tokens)
	}

	rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh token should rotate")
	}
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("reusing a rotated token: got %v", err)
	}
	if _, err := svc.RefreshToken(ctx, "garbage"); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Errorf("malformed token: got %v", err)
	}
}

func TestLogoutRevokesOnlyOwnToken(t *testing.T) {
	db, svc := newAuthFixture(AuthOptions{})
	ctx := context.Background()
	user := db.addUser("+254712345678")
	other := db.addUser("+254712345679")

	tokens, _ := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{PhoneNumber: user.PhoneNumber, OTP: "123456"})

	svc.Logout(ctx, auth.Identity{UserID: other.ID}, tokens.RefreshToken)
	if db.tokens[tokens.RefreshToken].IsRevoked {
		t.Error("another user's logout must not revoke the token")
	}
	svc.Logout(ctx, auth.Identity{UserID: user.ID}, "unknown")
	svc.Logout(ctx, auth.Identity{UserID: user.ID}, tokens.RefreshToken)
	if !db.tokens[tokens.RefreshToken].IsRevoked {
		t.Error("logout should revoke the token")
	}
}

func TestRegister(t *testing.T) {
	_, svc := newAuthFixture(AuthOptions{ExposeOTP: true})
	ctx := context.Background()
	req := &dto.RegisterRequest{PhoneNumber: "+254712345678", Email: "amani@example.com", Password: "Str0ngPass!"}

	resp, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.UserID == "" || resp.OTP != "123456" {
		t.Errorf("unexpected register response %+v", resp)
	}

	_, err = svc.Register(ctx, req)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("duplicate phone: got %v", err)
	}

	dupEmail := *req
	dupEmail.PhoneNumber = "+254712345679"
	_, err = svc.Register(ctx, &dupEmail)
	ce, ok := apperrors.AsCustom(err)
	if !errors.Is(err, apperrors.ErrConflict) || !ok || ce.Field != "email" {
		t.Errorf("duplicate email: got %v", err)
	}

	short := *req
	short.PhoneNumber, short.Email, short.Password = "+254712345670", "x@example.com", "short"
	if _, err := svc.Register(ctx, &short); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("short password: got %v", err)
	}

	badEmail := *req
	badEmail.PhoneNumber, badEmail.Email = "+254712345671", "not-an-email"
	if _, err := svc.Register(ctx, &badEmail); err == nil || !strings.Contains(err.Error(), "email") {
		t.Errorf("bad email: got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	db, svc := newAuthFixture(AuthOptions{})
	ctx := context.Background()
	user := db.addUser("+254712345678")
	tokens, _ := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{PhoneNumber: user.PhoneNumber, OTP: "123456"})

	err := svc.ResetPassword(ctx, &dto.PasswordResetRequest{PhoneNumber: user.PhoneNumber, OTP: "123456", NewPassword: "N3wStr0ngPass!"})
	if err != nil {
		t.Fatal(err)
	}
	if !auth.CheckPassword(db.users[user.ID].PasswordHash, "N3wStr0ngPass!") {
		t.Error("password not updated")
	}
	if !db.tokens[tokens.RefreshToken].IsRevoked {
		t.Error("password reset should revoke refresh tokens")
	}
}

func TestLoginMatchesLocalPhoneForms(t *testing.T) {
	_, svc := newAuthFixture(AuthOptions{})
	ctx := context.Background()

	first, err := svc.Login(ctx, &dto.LoginRequest{PhoneNumber: "0712345678"})
	if err != nil {
		t.Fatal(err)
	}
	if first.PhoneNumber != "+254712345678" {
		t.Errorf("phone = %q, want E.164", first.PhoneNumber)
	}
	for _, form := range []string{"+254712345678", "254712345678", "0712 345 678"} {
		resp, err := svc.Login(ctx, &dto.LoginRequest{PhoneNumber: form})
		if err != nil {
			t.Fatal(err)
		}
		if resp.UserCreated {
			t.Errorf("login with %q created a second account", form)
		}
	}
}

type failingRevokeTokens struct{ fakeTokens }

func (failingRevokeTokens) RevokeToken(context.Context, string) error {
	return errors.New("connection reset")
}

func TestRefreshExpiredTokenLogsRevokeFailure(t *testing.T) {
	db := newMemDB()
	var buf bytes.Buffer
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "pamoja-vote-test",
	})
	svc := NewAuthService(fakeUsers{db}, failingRevokeTokens{fakeTokens{db}}, jwtService,
		AuthOptions{Checker: otp.NewStaticChecker("123456")}, zerolog.New(&buf))

	user := db.addUser("+254712345678")
	token := uuid.NewString()
	_ = fakeTokens{db}.CreateToken(context.Background(), token, user.ID, time.Now().Add(-time.Minute))

	if _, err := svc.RefreshToken(context.Background(), token); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "connection reset") {
		t.Errorf("revoke failure not logged: %s", out)
	}
}
