package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authz "github.com/Simoh8/pamoja-vote/internal/app/auth"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/dberrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// SquadService defines the interface for squad registry operations
type SquadService interface {
	CreateSquad(ctx context.Context, userID uuid.UUID, req *dto.CreateSquadRequest) (*dto.SquadResponse, error)
	GetSquad(ctx context.Context, userID, squadID uuid.UUID) (*dto.SquadResponse, error)
	ListSquads(ctx context.Context, userID uuid.UUID, filter dto.SquadFilter) (*dto.SquadListResponse, error)
	ListPublicSquads(ctx context.Context, filter dto.SquadFilter) (*dto.SquadListResponse, error)
	UpdateSquad(ctx context.Context, userID, squadID uuid.UUID, req *dto.UpdateSquadRequest) (*dto.SquadResponse, error)
	DeleteSquad(ctx context.Context, userID, squadID uuid.UUID) error
	MySquads(ctx context.Context, userID uuid.UUID) ([]dto.SquadResponse, error)
	Leaderboard(ctx context.Context, county string, limit int) ([]dto.LeaderboardEntry, error)

	JoinSquad(ctx context.Context, userID, squadID uuid.UUID) (*dto.MembershipResponse, error)
	LeaveSquad(ctx context.Context, userID, squadID uuid.UUID) error
	ListMembers(ctx context.Context, userID, squadID uuid.UUID) ([]dto.MembershipResponse, error)
	MyMemberships(ctx context.Context, userID uuid.UUID) ([]dto.MembershipResponse, error)
	MyMembership(ctx context.Context, userID, squadID uuid.UUID) (*dto.MembershipResponse, error)
	ChangeRole(ctx context.Context, userID, membershipID uuid.UUID, role string) (*dto.MembershipResponse, error)
	UpdateRegistrationStatus(ctx context.Context, userID, membershipID uuid.UUID, registered bool) (*dto.MembershipResponse, error)
}

// SquadOptions tunes squad registry policy
type SquadOptions struct {
	// SingleMembership rejects joining a squad while holding a membership in
	// another squad the user does not own
	SingleMembership bool
}

type squadServiceImpl struct {
	squadRepo        SquadStore
	memberRepo       MembershipStore
	centerRepo       CenterStore
	tx               Transactor
	authz            *authz.AuthorizationService
	singleMembership bool
	logger           zerolog.Logger
}

// NewSquadService creates a new SquadService
func NewSquadService(
	squadRepo SquadStore,
	memberRepo MembershipStore,
	centerRepo CenterStore,
	tx Transactor,
	authzService *authz.AuthorizationService,
	opts SquadOptions,
	logger zerolog.Logger,
) SquadService {
	return &squadServiceImpl{
		squadRepo:        squadRepo,
		memberRepo:       memberRepo,
		centerRepo:       centerRepo,
		tx:               tx,
		authz:            authzService,
		singleMembership: opts.SingleMembership,
		logger:           logger,
	}
}

func squadNotFound() error {
	return apperrors.NewCustomError(apperrors.ErrSquadNotFound, "Squad not found")
}

func duplicateSquadError(existing *models.SquadWithStats, center *models.Center, date string) error {
	msg := fmt.Sprintf(
		"A squad %q already exists for %s on %s with available slots. Please join %q instead of creating a new squad.",
		existing.Name, center.Name, date, existing.Name,
	)
	return apperrors.NewCustomError(apperrors.ErrDuplicateSquad, msg).
		WithField("registration_center").
		WithDetails(map[string]interface{}{"squad_id": existing.ID.String()})
}

// CreateSquad resolves the center, rejects a joinable duplicate and stores the
// squad with its owner as leader, all inside one serializable transaction
func (s *squadServiceImpl) CreateSquad(ctx context.Context, userID uuid.UUID, req *dto.CreateSquadRequest) (*dto.SquadResponse, error) {
	name := strings.TrimSpace(req.Name)
	county := strings.TrimSpace(req.County)
	if name == "" || county == "" {
		return nil, apperrors.NewValidationError("", "name and county are required")
	}
	date, err := helpers.ParseDate(req.VoterRegistrationDate)
	if err != nil {
		return nil, apperrors.NewValidationError("voter_registration_date", "voter_registration_date must be formatted YYYY-MM-DD")
	}
	if req.MaxMembers != nil && *req.MaxMembers <= 0 {
		return nil, apperrors.NewValidationError("max_members", "max_members must be greater than zero")
	}

	squad := &models.Squad{
		Name:                  name,
		Description:           strings.TrimSpace(req.Description),
		MaxMembers:            req.MaxMembers,
		County:                county,
		IsPublic:              true,
		VoterRegistrationDate: date,
		OwnerID:               userID,
	}
	if req.IsPublic != nil {
		squad.IsPublic = *req.IsPublic
	}

	err = s.tx.RunSerializable(ctx, func(ctx context.Context) error {
		center, err := resolveCenter(ctx, s.centerRepo, req.RegistrationCenter, county)
		if err != nil {
			return err
		}

		if center != nil {
			existing, err := s.squadRepo.FindJoinable(ctx, center.ID, date)
			switch {
			case err == nil:
				return duplicateSquadError(existing, center, helpers.FormatDate(date))
			case !errors.Is(err, apperrors.ErrSquadNotFound):
				return err
			}
			squad.RegistrationCenterID = &center.ID
		}

		if err := s.squadRepo.Create(ctx, squad); err != nil {
			return err
		}

		return s.memberRepo.Add(ctx, &models.Membership{
			UserID:  userID,
			SquadID: squad.ID,
			Role:    models.RoleLeader,
		})
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) {
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Squad creation lost a serialization race")
			return nil, apperrors.NewConflictError("Another squad was created for this center at the same time. Please retry.")
		}
		return nil, err
	}

	s.logger.Info().
		Str("squadID", squad.ID.String()).
		Str("ownerID", userID.String()).
		Str("county", squad.County).
		Msg("Squad created")

	created, err := s.squadRepo.GetWithStats(ctx, squad.ID)
	if err != nil {
		return nil, err
	}
	resp := toSquadResponse(created)
	return &resp, nil
}

// visibleSquad loads a squad and hides it as not found unless the user may see it
func (s *squadServiceImpl) visibleSquad(ctx context.Context, userID, squadID uuid.UUID) (*models.SquadWithStats, error) {
	squad, err := s.squadRepo.GetWithStats(ctx, squadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSquadNotFound) {
			return nil, squadNotFound()
		}
		return nil, err
	}
	ok, err := s.authz.CanViewSquad(ctx, &squad.Squad, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, squadNotFound()
	}
	return squad, nil
}

// ownedSquad loads a squad and fails unless the user owns it
func (s *squadServiceImpl) ownedSquad(ctx context.Context, userID, squadID uuid.UUID) (*models.SquadWithStats, error) {
	squad, err := s.visibleSquad(ctx, userID, squadID)
	if err != nil {
		return nil, err
	}
	if squad.OwnerID != userID {
		return nil, apperrors.NewForbiddenError("Only the squad owner can do this")
	}
	return squad, nil
}

func (s *squadServiceImpl) GetSquad(ctx context.Context, userID, squadID uuid.UUID) (*dto.SquadResponse, error) {
	squad, err := s.visibleSquad(ctx, userID, squadID)
	if err != nil {
		return nil, err
	}
	resp := toSquadResponse(squad)
	return &resp, nil
}

func (s *squadServiceImpl) ListSquads(ctx context.Context, userID uuid.UUID, filter dto.SquadFilter) (*dto.SquadListResponse, error) {
	squads, total, err := s.squadRepo.ListVisible(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &dto.SquadListResponse{
		Squads:     toSquadResponses(squads),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

func (s *squadServiceImpl) ListPublicSquads(ctx context.Context, filter dto.SquadFilter) (*dto.SquadListResponse, error) {
	squads, total, err := s.squadRepo.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.SquadListResponse{
		Squads:     toSquadResponses(squads),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

func (s *squadServiceImpl) UpdateSquad(ctx context.Context, userID, squadID uuid.UUID, req *dto.UpdateSquadRequest) (*dto.SquadResponse, error) {
	squad, err := s.ownedSquad(ctx, userID, squadID)
	if err != nil {
		return nil, err
	}

	setTrimmed(&squad.Name, req.Name)
	setTrimmed(&squad.Description, req.Description)
	setTrimmed(&squad.County, req.County)
	if req.MaxMembers != nil {
		if *req.MaxMembers <= 0 {
			return nil, apperrors.NewValidationError("max_members", "max_members must be greater than zero")
		}
		squad.MaxMembers = req.MaxMembers
	}
	if req.IsPublic != nil {
		squad.IsPublic = *req.IsPublic
	}
	if req.VoterRegistrationDate != nil {
		date, err := helpers.ParseDate(*req.VoterRegistrationDate)
		if err != nil {
			return nil, apperrors.NewValidationError("voter_registration_date", "voter_registration_date must be formatted YYYY-MM-DD")
		}
		squad.VoterRegistrationDate = date
	}
	if squad.Name == "" || squad.County == "" {
		return nil, apperrors.NewValidationError("", "name and county cannot be blank")
	}

	if err := s.squadRepo.Update(ctx, &squad.Squad); err != nil {
		return nil, err
	}
	resp := toSquadResponse(squad)
	return &resp, nil
}

func (s *squadServiceImpl) DeleteSquad(ctx context.Context, userID, squadID uuid.UUID) error {
	if _, err := s.ownedSquad(ctx, userID, squadID); err != nil {
		return err
	}
	if err := s.squadRepo.Delete(ctx, squadID); err != nil {
		return err
	}
	s.logger.Info().Str("squadID", squadID.String()).Str("userID", userID.String()).Msg("Squad deleted")
	return nil
}

func (s *squadServiceImpl) MySquads(ctx context.Context, userID uuid.UUID) ([]dto.SquadResponse, error) {
	squads, err := s.squadRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toSquadResponses(squads), nil
}

// Leaderboard ranks squads with at least one member by member count
func (s *squadServiceImpl) Leaderboard(ctx context.Context, county string, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	squads, err := s.squadRepo.Leaderboard(ctx, strings.TrimSpace(county), limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(squads))
	for _, sq := range squads {
		entries = append(entries, dto.LeaderboardEntry{
			SquadID:              sq.ID.String(),
			County:               sq.County,
			SquadName:            sq.Name,
			MemberCount:          MemberCount(sq.SquadCounts),
			RegistrationProgress: RegistrationProgress(sq.SquadCounts),
			CreatedAt:            sq.CreatedAt,
		})
	}
	return entries, nil
}

// JoinSquad enrolls the user as a member. The member cap is advisory and not checked here.
func (s *squadServiceImpl) JoinSquad(ctx context.Context, userID, squadID uuid.UUID) (*dto.MembershipResponse, error) {
	squad, err := s.squadRepo.GetWithStats(ctx, squadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSquadNotFound) {
			return nil, apperrors.NewValidationError("squad_id", "Squad not found")
		}
		return nil, err
	}
	if !squad.IsPublic && squad.OwnerID != userID {
		return nil, apperrors.NewValidationError("squad_id", "This squad is private")
	}

	existing, err := s.authz.Membership(ctx, squadID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadyMember, "You are already a member of this squad")
	}

	if s.singleMembership {
		other, err := s.memberRepo.FindOtherMembership(ctx, userID, squadID)
		switch {
		case err == nil:
			return nil, apperrors.NewValidationError("squad_id",
				fmt.Sprintf("You are already a member of %q. Leave it before joining another squad.", other.SquadName)).
				WithDetails(map[string]interface{}{"squad_id": other.SquadID.String()})
		case !errors.Is(err, apperrors.ErrMembershipNotFound):
			return nil, err
		}
	}

	m := &models.Membership{
		UserID:    userID,
		SquadID:   squadID,
		Role:      models.RoleMember,
		SquadName: squad.Name,
	}
	if err := s.memberRepo.Add(ctx, m); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyMember):
			return nil, apperrors.NewCustomError(apperrors.ErrAlreadyMember, "You are already a member of this squad")
		case errors.Is(err, apperrors.ErrSquadNotFound):
			return nil, apperrors.NewValidationError("squad_id", "Squad not found")
		}
		return nil, err
	}

	s.logger.Info().Str("squadID", squadID.String()).Str("userID", userID.String()).Msg("User joined squad")
	resp := toMembershipResponse(m)
	return &resp, nil
}

// LeaveSquad deletes the user's membership unless they own the squad or are its only leader
func (s *squadServiceImpl) LeaveSquad(ctx context.Context, userID, squadID uuid.UUID) error {
	m, err := s.authz.Membership(ctx, squadID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return apperrors.NewValidationError("squad_id", "You are not a member of this squad")
	}

	squad, err := s.squadRepo.GetWithStats(ctx, squadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSquadNotFound) {
			return squadNotFound()
		}
		return err
	}
	if squad.OwnerID == userID {
		return apperrors.NewValidationError("squad_id", "The squad owner cannot leave. Delete the squad instead.")
	}

	if m.Role == models.RoleLeader {
		leaders, err := s.memberRepo.CountLeaders(ctx, squadID)
		if err != nil {
			return err
		}
		if leaders <= 1 {
			return apperrors.NewCustomError(apperrors.ErrSoleLeader,
				"You are the only leader of this squad. Promote another member before leaving.").WithField("squad_id")
		}
	}

	if err := s.memberRepo.Remove(ctx, m.ID); err != nil {
		return err
	}
	s.logger.Info().Str("squadID", squadID.String()).Str("userID", userID.String()).Msg("User left squad")
	return nil
}

func (s *squadServiceImpl) ListMembers(ctx context.Context, userID, squadID uuid.UUID) ([]dto.MembershipResponse, error) {
	if _, err := s.visibleSquad(ctx, userID, squadID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListBySquad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	return toMembershipResponses(members), nil
}

func (s *squadServiceImpl) MyMemberships(ctx context.Context, userID uuid.UUID) ([]dto.MembershipResponse, error) {
	ms, err := s.memberRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toMembershipResponses(ms), nil
}

func (s *squadServiceImpl) MyMembership(ctx context.Context, userID, squadID uuid.UUID) (*dto.MembershipResponse, error) {
	m, err := s.authz.Membership(ctx, squadID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrMembershipNotFound, "You are not a member of this squad")
	}
	resp := toMembershipResponse(m)
	return &resp, nil
}

func (s *squadServiceImpl) membership(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	m, err := s.memberRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMembershipNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrMembershipNotFound, "Membership not found")
		}
		return nil, err
	}
	return m, nil
}

// ChangeRole sets a membership's role; only the squad owner or a leader may do it
func (s *squadServiceImpl) ChangeRole(ctx context.Context, userID, membershipID uuid.UUID, role string) (*dto.MembershipResponse, error) {
	newRole := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("role", "role must be one of: member, leader")
	}

	m, err := s.membership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	squad, err := s.authz.RequireSquadManager(ctx, m.SquadID, userID)
	if err != nil {
		return nil, err
	}
	// the owner always stays a leader
	if m.UserID == squad.OwnerID && newRole != models.RoleLeader {
		return nil, apperrors.NewValidationError("role", "The squad owner must remain a leader")
	}

	if err := s.memberRepo.UpdateRole(ctx, m.ID, newRole); err != nil {
		return nil, err
	}
	m.Role = newRole

	s.logger.Info().
		Str("membershipID", m.ID.String()).
		Str("role", string(newRole)).
		Str("changedBy", userID.String()).
		Msg("Membership role changed")
	resp := toMembershipResponse(m)
	return &resp, nil
}

// UpdateRegistrationStatus lets a member record whether they have registered to vote
func (s *squadServiceImpl) UpdateRegistrationStatus(ctx context.Context, userID, membershipID uuid.UUID, registered bool) (*dto.MembershipResponse, error) {
	m, err := s.membership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, apperrors.NewForbiddenError("You can only update your own registration status")
	}

	if err := s.memberRepo.UpdateRegistered(ctx, m.ID, registered); err != nil {
		return nil, err
	}
	m.HasRegistered = registered
	resp := toMembershipResponse(m)
	return &resp, nil
}
