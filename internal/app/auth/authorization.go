package auth

import (
	"context"
	"errors"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/google/uuid"
)

type squadReader interface {
	GetWithStats(ctx context.Context, id uuid.UUID) (*models.SquadWithStats, error)
}

type membershipReader interface {
	Get(ctx context.Context, squadID, userID uuid.UUID) (*models.Membership, error)
}

// AuthorizationService answers who may see and manage a squad
type AuthorizationService struct {
	squads  squadReader
	members membershipReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(squads squadReader, members membershipReader) *AuthorizationService {
	return &AuthorizationService{
		squads:  squads,
		members: members,
	}
}

// Membership returns the user's membership in squad, or nil when there is none
func (s *AuthorizationService) Membership(ctx context.Context, squadID, userID uuid.UUID) (*models.Membership, error) {
	m, err := s.members.Get(ctx, squadID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// IsMember reports whether the user holds any membership in squad
func (s *AuthorizationService) IsMember(ctx context.Context, squadID, userID uuid.UUID) (bool, error) {
	m, err := s.Membership(ctx, squadID, userID)
	return m != nil, err
}

// CanViewSquad reports whether the squad is public, owned by, or joined by the user
func (s *AuthorizationService) CanViewSquad(ctx context.Context, squad *models.Squad, userID uuid.UUID) (bool, error) {
	if squad.IsPublic || squad.OwnerID == userID {
		return true, nil
	}
	return s.IsMember(ctx, squad.ID, userID)
}

// CanManageSquad reports whether the user owns the squad or leads it
func (s *AuthorizationService) CanManageSquad(ctx context.Context, squad *models.Squad, userID uuid.UUID) (bool, error) {
	if squad.OwnerID == userID {
		return true, nil
	}
	m, err := s.Membership(ctx, squad.ID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role == models.RoleLeader, nil
}

// RequireSquadManager loads the squad and fails unless the user may manage it
func (s *AuthorizationService) RequireSquadManager(ctx context.Context, squadID, userID uuid.UUID) (*models.SquadWithStats, error) {
	squad, err := s.squads.GetWithStats(ctx, squadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSquadNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrSquadNotFound, "Squad not found")
		}
		return nil, err
	}

	ok, err := s.CanManageSquad(ctx, &squad.Squad, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbiddenError("Only the squad owner or a squad leader can do this")
	}
	return squad, nil
}
