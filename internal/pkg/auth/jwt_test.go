package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "pamoja.vote",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWT()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "+254700000001")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.RefreshToken == "" || pair.AccessToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}

	id, err := svc.ValidateAndExtractIdentity(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAndExtractIdentity: %v", err)
	}
	if id.UserID != userID || id.PhoneNumber != "+254700000001" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := newTestJWT()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(uuid.New(), "+254700000001")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(uuid.New(), "+254700000001")
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	if _, err := other.ValidateToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"abc", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Bearer", "", true},
		{"  Bearer   ", "", true},
		{"bearer xyz", "xyz", false},
		{"BEARER  xyz ", "xyz", false},
		{"Bearerxyz", "Bearerxyz", false},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractBearerToken(%q) err = %v", tt.header, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatch")
	}
}
