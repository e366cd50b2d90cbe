package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventController handles event and RSVP endpoints
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// CreateEvent schedules an event for a squad
// @Summary Create an event
// @Description Schedules a squad meetup at a center. Requires ownership or a leader membership in the squad.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or unknown center"
// @Failure 403 {object} dto.ErrorResponse "Not a squad leader"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(event, "Event created successfully"))
}

// ListEvents lists events of the caller's squads
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse} "Events retrieved successfully"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	events, err := c.eventService.ListEvents(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// UpcomingEvents lists events that have not started yet
// @Summary List upcoming events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse} "Events retrieved successfully"
// @Router /events/upcoming [get]
func (c *EventController) UpcomingEvents(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	events, err := c.eventService.UpcomingEvents(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// SquadEvents lists the events of one squad
// @Summary List a squad's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse} "Events retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /squads/{id}/events [get]
func (c *EventController) SquadEvents(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	events, err := c.eventService.SquadEvents(ctx.Request.Context(), userID, squadID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// GetEvent retrieves an event
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.GetEvent(ctx.Request.Context(), userID, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// UpdateEvent changes an event
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or unknown center"
// @Failure 403 {object} dto.ErrorResponse "Not a squad leader"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [patch]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), userID, eventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(event, "Event updated successfully"))
}

// DeleteEvent removes an event with its RSVPs and invites
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 204 "Event deleted"
// @Failure 403 {object} dto.ErrorResponse "Not a squad leader"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), userID, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// RSVP records the caller's answer to an event
// @Summary RSVP to an event
// @Description Creates the caller's RSVP (default maybe) or updates it in place. Omitting status keeps the current answer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Param request body dto.RSVPRequest false "RSVP status"
// @Success 200 {object} dto.APIResponse{data=dto.RSVPResponse} "RSVP recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/rsvp [post]
func (c *EventController) RSVP(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RSVPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleBindError(ctx, err)
		return
	}

	rsvp, err := c.eventService.RSVP(ctx.Request.Context(), userID, eventID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(rsvp, "RSVP recorded"))
}

// ListRSVPs lists the answers to an event
// @Summary List RSVPs of an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]dto.RSVPResponse} "RSVPs retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/rsvps [get]
func (c *EventController) ListRSVPs(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	rsvps, err := c.eventService.ListRSVPs(ctx.Request.Context(), userID, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rsvps))
}

// MyRSVPs lists the caller's RSVPs
// @Summary List my RSVPs
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.RSVPResponse} "RSVPs retrieved successfully"
// @Router /events/my-rsvps [get]
func (c *EventController) MyRSVPs(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	rsvps, err := c.eventService.MyRSVPs(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rsvps))
}
