package services

import (
	"context"
	"errors"
	"strings"
	"time"

	authz "github.com/Simoh8/pamoja-vote/internal/app/auth"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventService defines the interface for event scheduling operations
type EventService interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, userID uuid.UUID, page, size int) (*dto.EventListResponse, error)
	UpcomingEvents(ctx context.Context, userID uuid.UUID, page, size int) (*dto.EventListResponse, error)
	SquadEvents(ctx context.Context, userID, squadID uuid.UUID, page, size int) (*dto.EventListResponse, error)
	UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error
	RSVP(ctx context.Context, userID, eventID uuid.UUID, status *string) (*dto.RSVPResponse, error)
	ListRSVPs(ctx context.Context, userID, eventID uuid.UUID) ([]dto.RSVPResponse, error)
	MyRSVPs(ctx context.Context, userID uuid.UUID) ([]dto.RSVPResponse, error)
}

type eventServiceImpl struct {
	eventRepo  EventStore
	centerRepo CenterStore
	authz      *authz.AuthorizationService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo EventStore, centerRepo CenterStore, authzService *authz.AuthorizationService, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		eventRepo:  eventRepo,
		centerRepo: centerRepo,
		authz:      authzService,
		logger:     logger,
		now:        time.Now,
	}
}

func eventNotFound() error {
	return apperrors.NewCustomError(apperrors.ErrEventNotFound, "Event not found")
}

func toEventResponse(e *models.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:           e.ID.String(),
		SquadID:      e.SquadID.String(),
		SquadName:    e.SquadName,
		CenterID:     e.CenterID.String(),
		CenterName:   e.CenterName,
		Datetime:     e.Datetime,
		MeetingPoint: e.MeetingPoint,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
	}
}

func toRSVPResponse(r *models.RSVP) dto.RSVPResponse {
	return dto.RSVPResponse{
		ID:          r.ID.String(),
		EventID:     r.EventID.String(),
		UserID:      r.UserID.String(),
		Status:      string(r.Status),
		RespondedAt: r.RespondedAt,
	}
}

func toRSVPResponses(rsvps []*models.RSVP) []dto.RSVPResponse {
	out := make([]dto.RSVPResponse, 0, len(rsvps))
	for _, r := range rsvps {
		out = append(out, toRSVPResponse(r))
	}
	return out
}

// requireCenter fails with a validation error when the center does not exist
func (s *eventServiceImpl) requireCenter(ctx context.Context, centerID uuid.UUID) (*models.Center, error) {
	center, err := s.centerRepo.GetByID(ctx, centerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCenterNotFound) {
			return nil, apperrors.NewValidationError("center_id", "Center not found")
		}
		return nil, err
	}
	return center, nil
}

// visibleEvent loads an event the user can see through a squad membership
func (s *eventServiceImpl) visibleEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			return nil, eventNotFound()
		}
		return nil, err
	}
	member, err := s.authz.IsMember(ctx, event.SquadID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, eventNotFound()
	}
	return event, nil
}

func (s *eventServiceImpl) CreateEvent(ctx context.Context, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if req.Datetime.IsZero() {
		return nil, apperrors.NewValidationError("datetime", "datetime is required")
	}
	if _, err := s.authz.RequireSquadManager(ctx, req.SquadID, userID); err != nil {
		return nil, err
	}
	center, err := s.requireCenter(ctx, req.CenterID)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		SquadID:      req.SquadID,
		CenterID:     center.ID,
		Datetime:     req.Datetime.UTC(),
		MeetingPoint: strings.TrimSpace(req.MeetingPoint),
		Note:         strings.TrimSpace(req.Note),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("eventID", event.ID.String()).
		Str("squadID", event.SquadID.String()).
		Time("datetime", event.Datetime).
		Msg("Event created")

	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(created)
	return &resp, nil
}

func (s *eventServiceImpl) GetEvent(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventResponse, error) {
	event, err := s.visibleEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(event)
	return &resp, nil
}

func (s *eventServiceImpl) list(ctx context.Context, userID uuid.UUID, filter dto.EventFilter) (*dto.EventListResponse, error) {
	events, total, err := s.eventRepo.ListForMember(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return &dto.EventListResponse{
		Events:     out,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

func (s *eventServiceImpl) ListEvents(ctx context.Context, userID uuid.UUID, page, size int) (*dto.EventListResponse, error) {
	return s.list(ctx, userID, dto.EventFilter{Page: page, PageSize: size})
}

// UpcomingEvents lists visible events that have not started yet
func (s *eventServiceImpl) UpcomingEvents(ctx context.Context, userID uuid.UUID, page, size int) (*dto.EventListResponse, error) {
	from := s.now()
	return s.list(ctx, userID, dto.EventFilter{From: &from, Page: page, PageSize: size})
}

func (s *eventServiceImpl) SquadEvents(ctx context.Context, userID, squadID uuid.UUID, page, size int) (*dto.EventListResponse, error) {
	member, err := s.authz.IsMember(ctx, squadID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, squadNotFound()
	}
	return s.list(ctx, userID, dto.EventFilter{SquadID: &squadID, Page: page, PageSize: size})
}

func (s *eventServiceImpl) UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.visibleEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireSquadManager(ctx, event.SquadID, userID); err != nil {
		return nil, err
	}

	if req.CenterID != nil && *req.CenterID != event.CenterID {
		center, err := s.requireCenter(ctx, *req.CenterID)
		if err != nil {
			return nil, err
		}
		event.CenterID = center.ID
		event.CenterName = center.Name
	}
	if req.Datetime != nil {
		if req.Datetime.IsZero() {
			return nil, apperrors.NewValidationError("datetime", "datetime cannot be empty")
		}
		event.Datetime = req.Datetime.UTC()
	}
	setTrimmed(&event.MeetingPoint, req.MeetingPoint)
	setTrimmed(&event.Note, req.Note)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	resp := toEventResponse(event)
	return &resp, nil
}

func (s *eventServiceImpl) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	event, err := s.visibleEvent(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if _, err := s.authz.RequireSquadManager(ctx, event.SquadID, userID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return err
	}
	s.logger.Info().Str("eventID", event.ID.String()).Str("userID", userID.String()).Msg("Event deleted")
	return nil
}

// RSVP records the user's answer. Repeated calls update the same row; a nil
// status keeps the stored answer and only refreshes responded_at.
func (s *eventServiceImpl) RSVP(ctx context.Context, userID, eventID uuid.UUID, status *string) (*dto.RSVPResponse, error) {
	var st *models.RSVPStatus
	if status != nil {
		v := models.RSVPStatus(strings.ToLower(strings.TrimSpace(*status)))
		if !v.Valid() {
			return nil, apperrors.NewValidationError("status", "status must be one of: yes, no, maybe")
		}
		st = &v
	}

	event, err := s.visibleEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	rsvp, err := s.eventRepo.UpsertRSVP(ctx, event.ID, userID, st)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			return nil, eventNotFound()
		}
		return nil, err
	}
	resp := toRSVPResponse(rsvp)
	return &resp, nil
}

func (s *eventServiceImpl) ListRSVPs(ctx context.Context, userID, eventID uuid.UUID) ([]dto.RSVPResponse, error) {
	event, err := s.visibleEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	rsvps, err := s.eventRepo.ListRSVPs(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return toRSVPResponses(rsvps), nil
}

func (s *eventServiceImpl) MyRSVPs(ctx context.Context, userID uuid.UUID) ([]dto.RSVPResponse, error) {
	rsvps, err := s.eventRepo.ListUserRSVPs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRSVPResponses(rsvps), nil
}
