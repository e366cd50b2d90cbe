package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SquadController handles squad and membership endpoints
type SquadController struct {
	squadService services.SquadService
	logger       zerolog.Logger
}

// NewSquadController creates a new SquadController
func NewSquadController(squadService services.SquadService, logger zerolog.Logger) *SquadController {
	return &SquadController{
		squadService: squadService,
		logger:       logger,
	}
}

func squadFilterFromQuery(ctx *gin.Context) dto.SquadFilter {
	page, size := helpers.ParsePaginationParams(ctx)
	return dto.SquadFilter{
		County:   strings.TrimSpace(ctx.Query("county")),
		Page:     page,
		PageSize: size,
	}
}

// CreateSquad creates a squad owned by the caller
// @Summary Create a squad
// @Description Creates a squad and enrolls the caller as its leader. registration_center is either a center ID or an inline {name, county, constituency, ward, address} object. A squad is rejected when a joinable squad already exists for the same center and date.
// @Tags squads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSquadRequest true "Squad details"
// @Success 201 {object} dto.APIResponse{data=dto.SquadResponse} "Squad created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate joinable squad"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update, retry"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /squads [post]
func (c *SquadController) CreateSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateSquadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	squad, err := c.squadService.CreateSquad(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(squad, "Squad created successfully"))
}

// ListSquads lists the squads visible to the caller
// @Summary List squads
// @Description Lists public squads and the squads the caller owns or belongs to
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param county query string false "County filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.SquadListResponse} "Squads retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /squads [get]
func (c *SquadController) ListSquads(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	squads, err := c.squadService.ListSquads(ctx.Request.Context(), userID, squadFilterFromQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(squads))
}

// ListPublicSquads lists public squads without authentication
// @Summary List public squads
// @Tags squads
// @Produce json
// @Param county query string false "County filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.SquadListResponse} "Squads retrieved successfully"
// @Router /squads/public [get]
func (c *SquadController) ListPublicSquads(ctx *gin.Context) {
	squads, err := c.squadService.ListPublicSquads(ctx.Request.Context(), squadFilterFromQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(squads))
}

// MySquads lists the squads the caller owns
// @Summary List my squads
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SquadResponse} "Squads retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /squads/mine [get]
func (c *SquadController) MySquads(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	squads, err := c.squadService.MySquads(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(squads))
}

// Leaderboard ranks squads by member count
// @Summary Squad leaderboard
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param county query string false "County filter"
// @Param limit query int false "Number of squads" default(10)
// @Success 200 {object} dto.APIResponse{data=[]dto.LeaderboardEntry} "Leaderboard retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /squads/leaderboard [get]
func (c *SquadController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	entries, err := c.squadService.Leaderboard(ctx.Request.Context(), strings.TrimSpace(ctx.Query("county")), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}

// GetSquad retrieves a squad
// @Summary Get a squad
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SquadResponse} "Squad retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid squad ID"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /squads/{id} [get]
func (c *SquadController) GetSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	squad, err := c.squadService.GetSquad(ctx.Request.Context(), userID, squadID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(squad))
}

// UpdateSquad changes a squad
// @Summary Update a squad
// @Description Only the squad owner may update it
// @Tags squads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Param request body dto.UpdateSquadRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.SquadResponse} "Squad updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not the squad owner"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /squads/{id} [patch]
func (c *SquadController) UpdateSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSquadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	squad, err := c.squadService.UpdateSquad(ctx.Request.Context(), userID, squadID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(squad, "Squad updated successfully"))
}

// DeleteSquad removes a squad with its memberships, events and invites
// @Summary Delete a squad
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 204 "Squad deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the squad owner"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /squads/{id} [delete]
func (c *SquadController) DeleteSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.squadService.DeleteSquad(ctx.Request.Context(), userID, squadID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// JoinSquad enrolls the caller as a member
// @Summary Join a squad
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 201 {object} dto.APIResponse{data=dto.MembershipResponse} "Joined squad"
// @Failure 400 {object} dto.ErrorResponse "Squad missing, private, or caller already in another squad"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /squads/{id}/join [post]
func (c *SquadController) JoinSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	membership, err := c.squadService.JoinSquad(ctx.Request.Context(), userID, squadID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(membership, "Successfully joined squad"))
}

// LeaveSquad removes the caller's membership
// @Summary Leave a squad
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.MessageData} "Left squad"
// @Failure 400 {object} dto.ErrorResponse "Not a member, or sole leader"
// @Router /squads/{id}/leave [post]
func (c *SquadController) LeaveSquad(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.squadService.LeaveSquad(ctx.Request.Context(), userID, squadID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageData{Message: "Successfully left squad"}))
}

// ListMembers lists a squad's memberships
// @Summary List squad members
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]dto.MembershipResponse} "Members retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Squad not found"
// @Router /squads/{id}/members [get]
func (c *SquadController) ListMembers(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	members, err := c.squadService.ListMembers(ctx.Request.Context(), userID, squadID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(members))
}

// MyMembership returns the caller's membership in a squad
// @Summary Get my membership in a squad
// @Tags squads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Squad ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse} "Membership retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Not a member"
// @Router /squads/{id}/my-membership [get]
func (c *SquadController) MyMembership(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	squadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	membership, err := c.squadService.MyMembership(ctx.Request.Context(), userID, squadID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(membership))
}

// MyMemberships lists every membership of the caller
// @Summary List my memberships
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MembershipResponse} "Memberships retrieved successfully"
// @Router /memberships [get]
func (c *SquadController) MyMemberships(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}

	memberships, err := c.squadService.MyMemberships(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(memberships))
}

// ChangeRole sets a membership's role
// @Summary Change a member's role
// @Description Only the squad owner or a squad leader may change roles
// @Tags memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Param request body dto.ChangeRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse} "Role updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid role"
// @Failure 403 {object} dto.ErrorResponse "Not allowed to manage this squad"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Router /memberships/{id}/role [post]
func (c *SquadController) ChangeRole(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	membership, err := c.squadService.ChangeRole(ctx.Request.Context(), userID, membershipID, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("membershipID", membershipID.String()).
		Str("role", req.Role).
		Str("changedBy", userID.String()).
		Msg("Membership role changed")
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(membership, "Role updated successfully"))
}

// UpdateRegistrationStatus records whether the member has registered to vote
// @Summary Update my registration status
// @Tags memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Param request body dto.UpdateRegistrationStatusRequest true "Registration status"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse} "Status updated"
// @Failure 403 {object} dto.ErrorResponse "Not your membership"
// @Failure 404 {object} dto.ErrorResponse "Membership not found"
// @Router /memberships/{id}/registration [patch]
func (c *SquadController) UpdateRegistrationStatus(ctx *gin.Context) {
	userID, ok := middleware.RequireUserID(ctx)
	if !ok {
		return
	}
	membershipID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateRegistrationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	membership, err := c.squadService.UpdateRegistrationStatus(ctx.Request.Context(), userID, membershipID, *req.HasRegistered)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(membership))
}
