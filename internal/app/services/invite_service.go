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
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/Simoh8/pamoja-vote/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InviteService defines the interface for invite dispatching
type InviteService interface {
	CreateInvite(ctx context.Context, userID uuid.UUID, req *dto.CreateInviteRequest) (*dto.InviteResponse, error)
	BulkInvite(ctx context.Context, userID uuid.UUID, req *dto.BulkInviteRequest) (*dto.BulkInviteResponse, error)
	WhatsAppInvite(ctx context.Context, userID uuid.UUID, req *dto.WhatsAppInviteRequest) (*dto.BulkInviteResponse, error)
	GetInvite(ctx context.Context, userID, inviteID uuid.UUID) (*dto.InviteResponse, error)
	ListMyInvites(ctx context.Context, userID uuid.UUID, page, size int) (*dto.InviteListResponse, error)
}

type inviteServiceImpl struct {
	inviteRepo InviteStore
	squadRepo  SquadStore
	eventRepo  EventStore
	authz      *authz.AuthorizationService
	baseURL    string
	logger     zerolog.Logger
}

// NewInviteService creates a new InviteService. baseURL prefixes the links in invite messages.
func NewInviteService(
	inviteRepo InviteStore,
	squadRepo SquadStore,
	eventRepo EventStore,
	authzService *authz.AuthorizationService,
	baseURL string,
	logger zerolog.Logger,
) InviteService {
	return &inviteServiceImpl{
		inviteRepo: inviteRepo,
		squadRepo:  squadRepo,
		eventRepo:  eventRepo,
		authz:      authzService,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// inviteTarget is the squad or event an invite points at, with its composed message
type inviteTarget struct {
	squadID *uuid.UUID
	eventID *uuid.UUID
	message func(channel models.InviteChannel) string
}

func exactlyOneTarget(squadID, eventID *uuid.UUID) error {
	if (squadID == nil) == (eventID == nil) {
		return apperrors.NewValidationError("", "Provide exactly one of squad_id or event_id")
	}
	return nil
}

// resolveTarget loads the referenced squad or event. Targets the inviter
// cannot see are reported as not found.
func (s *inviteServiceImpl) resolveTarget(ctx context.Context, userID uuid.UUID, squadID, eventID *uuid.UUID) (*inviteTarget, error) {
	if squadID != nil {
		squad, err := s.squadRepo.GetWithStats(ctx, *squadID)
		if err != nil {
			return nil, err
		}
		ok, err := s.authz.CanViewSquad(ctx, &squad.Squad, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrSquadNotFound
		}
		id := squad.ID
		return &inviteTarget{
			squadID: &id,
			message: func(ch models.InviteChannel) string {
				return SquadInviteMessage(ch, s.baseURL, squad.Name, id)
			},
		}, nil
	}

	event, err := s.eventRepo.GetByID(ctx, *eventID)
	if err != nil {
		return nil, err
	}
	member, err := s.authz.IsMember(ctx, event.SquadID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrEventNotFound
	}
	id := event.ID
	return &inviteTarget{
		eventID: &id,
		message: func(ch models.InviteChannel) string {
			return EventInviteMessage(ch, s.baseURL, event.CenterName, event.Datetime, id)
		},
	}, nil
}

func isMissingTarget(err error) bool {
	return errors.Is(err, apperrors.ErrSquadNotFound) || errors.Is(err, apperrors.ErrEventNotFound)
}

func toInviteResponse(inv *models.Invite) dto.InviteResponse {
	resp := dto.InviteResponse{
		ID:             inv.ID.String(),
		InviterID:      inv.InviterID.String(),
		InviteeContact: inv.InviteeContact,
		Channel:        string(inv.Channel),
		Status:         string(inv.Status),
		Message:        inv.Message,
		SentAt:         inv.SentAt,
		DeliveredAt:    inv.DeliveredAt,
	}
	if inv.SquadID != nil {
		id := inv.SquadID.String()
		resp.SquadID = &id
	}
	if inv.EventID != nil {
		id := inv.EventID.String()
		resp.EventID = &id
	}
	return resp
}

func toInviteResponses(invites []*models.Invite) []dto.InviteResponse {
	out := make([]dto.InviteResponse, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInviteResponse(inv))
	}
	return out
}

func (s *inviteServiceImpl) CreateInvite(ctx context.Context, userID uuid.UUID, req *dto.CreateInviteRequest) (*dto.InviteResponse, error) {
	channel := models.InviteChannel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if !channel.Valid() {
		return nil, apperrors.NewValidationError("channel", "channel must be one of: whatsapp, sms")
	}
	contact := validation.NormalizePhone(req.InviteeContact)
	if !validation.IsValidPhone(contact) {
		return nil, apperrors.NewValidationError("invitee_contact", "Enter a valid phone number")
	}
	if err := exactlyOneTarget(req.SquadID, req.EventID); err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(ctx, userID, req.SquadID, req.EventID)
	if err != nil {
		if isMissingTarget(err) {
			field := "squad_id"
			if req.EventID != nil {
				field = "event_id"
			}
			return nil, apperrors.NewValidationError(field, "Referenced squad or event does not exist")
		}
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = target.message(channel)
	}

	invite := &models.Invite{
		InviterID:      userID,
		InviteeContact: contact,
		Channel:        channel,
		Status:         models.InviteSent,
		SquadID:        target.squadID,
		EventID:        target.eventID,
		Message:        message,
	}
	if err := s.inviteRepo.CreateMany(ctx, []*models.Invite{invite}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("inviteID", invite.ID.String()).Str("channel", string(channel)).Msg("Invite recorded")
	resp := toInviteResponse(invite)
	return &resp, nil
}

// BulkInvite records one invite per valid phone number. An unknown or hidden
// target yields an empty result rather than an error; bad numbers are skipped.
func (s *inviteServiceImpl) BulkInvite(ctx context.Context, userID uuid.UUID, req *dto.BulkInviteRequest) (*dto.BulkInviteResponse, error) {
	if len(req.PhoneNumbers) == 0 {
		return nil, apperrors.NewValidationError("phone_numbers", "phone_numbers is required")
	}
	channel := models.ChannelWhatsApp
	if req.Channel != "" {
		channel = models.InviteChannel(strings.ToLower(strings.TrimSpace(req.Channel)))
		if !channel.Valid() {
			return nil, apperrors.NewValidationError("channel", "channel must be one of: whatsapp, sms")
		}
	}
	if err := exactlyOneTarget(req.SquadID, req.EventID); err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(ctx, userID, req.SquadID, req.EventID)
	if err != nil {
		if isMissingTarget(err) {
			s.logger.Debug().Str("userID", userID.String()).Msg("Bulk invite target not found, nothing recorded")
			return bulkResponse(nil, nil), nil
		}
		return nil, err
	}

	message := target.message(channel)
	seen := make(map[string]struct{}, len(req.PhoneNumbers))
	var skipped []string
	invites := make([]*models.Invite, 0, len(req.PhoneNumbers))
	for _, raw := range req.PhoneNumbers {
		phone := validation.NormalizePhone(raw)
		if !validation.IsValidPhone(phone) {
			skipped = append(skipped, raw)
			continue
		}
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}

		invites = append(invites, &models.Invite{
			InviterID:      userID,
			InviteeContact: phone,
			Channel:        channel,
			Status:         models.InviteSent,
			SquadID:        target.squadID,
			EventID:        target.eventID,
			Message:        message,
		})
	}

	if len(invites) > 0 {
		if err := s.inviteRepo.CreateMany(ctx, invites); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("userID", userID.String()).
		Int("created", len(invites)).
		Int("skipped", len(skipped)).
		Str("channel", string(channel)).
		Msg("Bulk invites recorded")
	return bulkResponse(invites, skipped), nil
}

func (s *inviteServiceImpl) WhatsAppInvite(ctx context.Context, userID uuid.UUID, req *dto.WhatsAppInviteRequest) (*dto.BulkInviteResponse, error) {
	return s.BulkInvite(ctx, userID, &dto.BulkInviteRequest{
		PhoneNumbers: req.PhoneNumbers,
		SquadID:      req.SquadID,
		EventID:      req.EventID,
		Channel:      string(models.ChannelWhatsApp),
	})
}

func bulkResponse(invites []*models.Invite, skipped []string) *dto.BulkInviteResponse {
	return &dto.BulkInviteResponse{
		Message: fmt.Sprintf("Successfully created %d invites", len(invites)),
		Count:   len(invites),
		Invites: toInviteResponses(invites),
		Skipped: skipped,
	}
}

func (s *inviteServiceImpl) GetInvite(ctx context.Context, userID, inviteID uuid.UUID) (*dto.InviteResponse, error) {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInviteNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInviteNotFound, "Invite not found")
		}
		return nil, err
	}
	if invite.InviterID != userID {
		return nil, apperrors.NewCustomError(apperrors.ErrInviteNotFound, "Invite not found")
	}
	resp := toInviteResponse(invite)
	return &resp, nil
}

func (s *inviteServiceImpl) ListMyInvites(ctx context.Context, userID uuid.UUID, page, size int) (*dto.InviteListResponse, error) {
	invites, total, err := s.inviteRepo.ListByInviter(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}
	return &dto.InviteListResponse{
		Invites:    toInviteResponses(invites),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}
