package controllers

import (
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// InviteController handles invite endpoints
type InviteController struct {
	inviteService services.InviteService
	logger        zerolog.Logger
}

// NewInviteController creates a new InviteController
func NewInviteController(inviteService services.InviteService, logger zerolog.Logger) *InviteController {
	return &InviteController{
		inviteService: inviteService,
		logger:        logger,
	}
}

// CreateInvite records one invite
// @Summary Create an invite
// @Description Invites one contact to exactly one of a squad or an event. The message is composed when omitted.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInviteRequest true "Invite details"
// @Success 201 {object} dto.APIResponse{data=dto.InviteResponse} "Invite created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or reference"
// @Router /invites [post]
func (c *InviteController) CreateInvite(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateInviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	invite, err := c.inviteService.CreateInvite(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(invite, "Invite created successfully"))
}

// BulkInvite invites many contacts at once
// @Summary Create invites in bulk
// @Description Invites every phone number to one squad or event. Invalid numbers are skipped; an unknown or hidden squad or event yields no invites.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkInviteRequest true "Phone numbers and target"
// @Success 201 {object} dto.APIResponse{data=dto.BulkInviteResponse} "Invites created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /invites/bulk [post]
func (c *InviteController) BulkInvite(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var req dto.BulkInviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.inviteService.BulkInvite(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("inviterID", userID.String()).Int("count", resp.Count).Msg("Bulk invites created")
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(resp, resp.Message))
}

// WhatsAppInvite invites many contacts over WhatsApp
// @Summary Create WhatsApp invites
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.WhatsAppInviteRequest true "Phone numbers and target"
// @Success 201 {object} dto.APIResponse{data=dto.BulkInviteResponse} "Invites created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /invites/whatsapp [post]
func (c *InviteController) WhatsAppInvite(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var req dto.WhatsAppInviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.inviteService.WhatsAppInvite(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(resp, resp.Message))
}

// ListMyInvites lists invites sent by the caller
// @Summary List my invites
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.InviteListResponse} "Invites retrieved successfully"
// @Router /invites [get]
func (c *InviteController) ListMyInvites(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	invites, err := c.inviteService.ListMyInvites(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(invites))
}

// GetInvite retrieves one of the caller's invites
// @Summary Get an invite
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invite ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.InviteResponse} "Invite retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Invite not found"
// @Router /invites/{id} [get]
func (c *InviteController) GetInvite(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	inviteID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	invite, err := c.inviteService.GetInvite(ctx.Request.Context(), userID, inviteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(invite))
}
