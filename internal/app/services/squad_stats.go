package services

import (
	"math"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
)

// MemberCount is the number of memberships of the squad
func MemberCount(c models.SquadCounts) int {
	return c.Members
}

// RemainingSlots returns nil for an uncapped squad, otherwise the free seats (never negative)
func RemainingSlots(maxMembers *int, c models.SquadCounts) *int {
	if maxMembers == nil {
		return nil
	}
	remaining := *maxMembers - c.Members
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// RegistrationProgress is the percentage of members who have registered to vote
func RegistrationProgress(c models.SquadCounts) float64 {
	if c.Members == 0 {
		return 0
	}
	pct := float64(c.Registered) / float64(c.Members) * 100
	return math.Round(pct*100) / 100
}

func toSquadResponse(s *models.SquadWithStats) dto.SquadResponse {
	resp := dto.SquadResponse{
		ID:                     s.ID.String(),
		Name:                   s.Name,
		Description:            s.Description,
		MaxMembers:             s.MaxMembers,
		County:                 s.County,
		IsPublic:               s.IsPublic,
		VoterRegistrationDate:  helpers.FormatDate(s.VoterRegistrationDate),
		RegistrationCenterName: s.CenterName,
		Owner:                  s.OwnerID.String(),
		MemberCount:            MemberCount(s.SquadCounts),
		RemainingSlots:         RemainingSlots(s.MaxMembers, s.SquadCounts),
		RegistrationProgress:   RegistrationProgress(s.SquadCounts),
		CreatedAt:              s.CreatedAt,
	}
	if s.RegistrationCenterID != nil {
		id := s.RegistrationCenterID.String()
		resp.RegistrationCenter = &id
	}
	return resp
}

func toSquadResponses(squads []*models.SquadWithStats) []dto.SquadResponse {
	out := make([]dto.SquadResponse, 0, len(squads))
	for _, s := range squads {
		out = append(out, toSquadResponse(s))
	}
	return out
}

func toMembershipResponse(m *models.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:            m.ID.String(),
		UserID:        m.UserID.String(),
		SquadID:       m.SquadID.String(),
		SquadName:     m.SquadName,
		Role:          string(m.Role),
		HasRegistered: m.HasRegistered,
		JoinedAt:      m.JoinedAt,
		User:          dto.NewUserResponse(m.User),
	}
}

func toMembershipResponses(ms []*models.Membership) []dto.MembershipResponse {
	out := make([]dto.MembershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMembershipResponse(m))
	}
	return out
}
