package services

import (
	"testing"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
)

func TestRemainingSlots(t *testing.T) {
	if RemainingSlots(nil, models.SquadCounts{Members: 3}) != nil {
		t.Error("uncapped squad should have unlimited slots")
	}
	if got := *RemainingSlots(intPtr(5), models.SquadCounts{Members: 2}); got != 3 {
		t.Errorf("RemainingSlots = %d, want 3", got)
	}
	if got := *RemainingSlots(intPtr(2), models.SquadCounts{Members: 4}); got != 0 {
		t.Errorf("over-full squad should clamp to 0, got %d", got)
	}
}

func TestRegistrationProgress(t *testing.T) {
	tests := []struct {
		counts models.SquadCounts
		want   float64
	}{
		{models.SquadCounts{}, 0},
		{models.SquadCounts{Members: 4, Registered: 1}, 25},
		{models.SquadCounts{Members: 3, Registered: 1}, 33.33},
		{models.SquadCounts{Members: 2, Registered: 2}, 100},
	}
	for _, tt := range tests {
		if got := RegistrationProgress(tt.counts); got != tt.want {
			t.Errorf("RegistrationProgress(%+v) = %v, want %v", tt.counts, got, tt.want)
		}
	}
}
