package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

func TestUpdateProfile(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(fakeUsers{db}, zerolog.Nop())
	ctx := context.Background()
	amani := db.addUser("+254712345678")
	other := db.addUser("+254712345679")

	first, county := "Amani", " Kisumu "
	resp, err := svc.UpdateProfile(ctx, amani.ID, &dto.UpdateProfileRequest{FirstName: &first, County: &county})
	if err != nil {
		t.Fatal(err)
	}
	if resp.FirstName != "Amani" || resp.County != "Kisumu" || resp.PhoneNumber != amani.PhoneNumber {
		t.Errorf("unexpected profile %+v", resp)
	}

	taken := other.Email
	if _, err := svc.UpdateProfile(ctx, amani.ID, &dto.UpdateProfileRequest{Email: &taken}); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("taken email: got %v", err)
	}
	bad := "nope"
	if _, err := svc.UpdateProfile(ctx, amani.ID, &dto.UpdateProfileRequest{Email: &bad}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("bad email: got %v", err)
	}

	got, err := svc.GetProfile(ctx, amani.ID)
	if err != nil || got.FirstName != "Amani" {
		t.Errorf("GetProfile = %+v, %v", got, err)
	}
}
