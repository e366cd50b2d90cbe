package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func floatPtr(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	// Nairobi CBD to Mombasa
	d := haversineKM(-1.2921, 36.8219, -4.0435, 39.6682)
	if math.Abs(d-439.9) > 1 {
		t.Errorf("haversineKM = %.1f, want about 440", d)
	}
	if haversineKM(1, 1, 1, 1) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestCenterCRUD(t *testing.T) {
	db := newMemDB()
	svc := NewCenterService(fakeCenters{db}, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.CreateCenter(ctx, &dto.CreateCenterRequest{
		Name: " Uhuru Primary ", County: "Nairobi", Address: "Juja Road",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Name != "Uhuru Primary" || string(created.OpeningHours) != "{}" {
		t.Errorf("unexpected center %+v", created)
	}

	_, err = svc.CreateCenter(ctx, &dto.CreateCenterRequest{
		Name: "Bad Hours", County: "Nairobi", Address: "x", OpeningHours: json.RawMessage(`[1,2]`),
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("non-object opening hours: got %v", err)
	}

	id := uuid.MustParse(created.ID)
	ward := "Pangani"
	updated, err := svc.UpdateCenter(ctx, id, &dto.UpdateCenterRequest{Ward: &ward})
	if err != nil || updated.Ward != "Pangani" {
		t.Fatalf("UpdateCenter = %+v, %v", updated, err)
	}

	list, _ := svc.ListCenters(ctx, dto.CenterFilter{Search: "juja"})
	if len(list.Centers) != 1 || list.Pagination.TotalItems != 1 {
		t.Errorf("search result %+v", list)
	}
	byCounty, _ := svc.ListCentersByCounty(ctx, "nairobi")
	if len(byCounty) != 1 {
		t.Errorf("county listing = %d", len(byCounty))
	}

	if err := svc.DeleteCenter(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetCenter(ctx, id); !errors.Is(err, apperrors.ErrCenterNotFound) {
		t.Errorf("deleted center: got %v", err)
	}
}

func TestNearbyCentersOrderedByDistance(t *testing.T) {
	db := newMemDB()
	svc := NewCenterService(fakeCenters{db}, zerolog.Nop())
	ctx := context.Background()

	for _, c := range []dto.CreateCenterRequest{
		{Name: "Far", County: "Nairobi", Address: "a", Lat: floatPtr(-1.3), Lng: floatPtr(36.9)},
		{Name: "Near", County: "Nairobi", Address: "b", Lat: floatPtr(-1.2697), Lng: floatPtr(36.8386)},
		{Name: "Mombasa", County: "Mombasa", Address: "c", Lat: floatPtr(-4.0435), Lng: floatPtr(39.6682)},
		{Name: "Unmapped", County: "Nairobi", Address: "d"},
	} {
		req := c
		if _, err := svc.CreateCenter(ctx, &req); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.NearbyCenters(ctx, &dto.NearbyCentersQuery{Lat: -1.2921, Lng: 36.8219})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Near" || got[1].Name != "Far" {
		t.Fatalf("nearby = %+v", got)
	}
	if got[0].DistanceKM == nil || *got[0].DistanceKM > *got[1].DistanceKM {
		t.Error("distances should be ascending")
	}

	tight, _ := svc.NearbyCenters(ctx, &dto.NearbyCentersQuery{Lat: -1.2921, Lng: 36.8219, RadiusKM: 5})
	if len(tight) != 1 {
		t.Errorf("5km radius should keep one center, got %d", len(tight))
	}
}
