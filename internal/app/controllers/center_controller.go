package controllers

import (
	"net/http"
	"strings"

	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/services"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CenterController handles registration center endpoints
type CenterController struct {
	centerService services.CenterService
	logger        zerolog.Logger
}

// NewCenterController creates a new CenterController
func NewCenterController(centerService services.CenterService, logger zerolog.Logger) *CenterController {
	return &CenterController{
		centerService: centerService,
		logger:        logger,
	}
}

// CreateCenter adds a registration center
// @Summary Create a registration center
// @Tags centers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCenterRequest true "Center details"
// @Success 201 {object} dto.APIResponse{data=dto.CenterResponse} "Center created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers [post]
func (c *CenterController) CreateCenter(ctx *gin.Context) {
	var req dto.CreateCenterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	center, err := c.centerService.CreateCenter(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(center, "Center created successfully"))
}

// ListCenters lists registration centers
// @Summary List registration centers
// @Description Lists centers, optionally filtered by county and a case-insensitive search over name, address and county
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param county query string false "County filter"
// @Param search query string false "Search term"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.CenterListResponse} "Centers retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers [get]
func (c *CenterController) ListCenters(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := dto.CenterFilter{
		County:   strings.TrimSpace(ctx.Query("county")),
		Search:   strings.TrimSpace(ctx.Query("search")),
		Page:     page,
		PageSize: size,
	}

	centers, err := c.centerService.ListCenters(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(centers))
}

// ListCentersByCounty lists every center in a county
// @Summary List centers in a county
// @Tags centers
// @Produce json
// @Param county path string true "County name"
// @Success 200 {object} dto.APIResponse{data=[]dto.CenterResponse} "Centers retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers/county/{county} [get]
func (c *CenterController) ListCentersByCounty(ctx *gin.Context) {
	centers, err := c.centerService.ListCentersByCounty(ctx.Request.Context(), ctx.Param("county"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(centers))
}

// NearbyCenters lists centers around a coordinate
// @Summary List nearby centers
// @Description Lists centers within radius_km of lat/lng, nearest first
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_km query number false "Search radius in kilometres" default(10)
// @Param limit query int false "Maximum number of centers" default(20)
// @Success 200 {object} dto.APIResponse{data=[]dto.CenterResponse} "Centers retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid coordinates"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers/nearby [get]
func (c *CenterController) NearbyCenters(ctx *gin.Context) {
	var q dto.NearbyCentersQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	centers, err := c.centerService.NearbyCenters(ctx.Request.Context(), &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(centers))
}

// GetCenter retrieves one center
// @Summary Get a registration center
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Center ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.CenterResponse} "Center retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid center ID"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Router /centers/{id} [get]
func (c *CenterController) GetCenter(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	center, err := c.centerService.GetCenter(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(center))
}

// UpdateCenter changes a center
// @Summary Update a registration center
// @Tags centers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Center ID" Format(uuid)
// @Param request body dto.UpdateCenterRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.CenterResponse} "Center updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Router /centers/{id} [patch]
func (c *CenterController) UpdateCenter(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCenterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	center, err := c.centerService.UpdateCenter(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(center, "Center updated successfully"))
}

// DeleteCenter removes a center
// @Summary Delete a registration center
// @Description Deletes the center and its events; squads keep existing without a center
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Center ID" Format(uuid)
// @Success 204 "Center deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid center ID"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Router /centers/{id} [delete]
func (c *CenterController) DeleteCenter(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.centerService.DeleteCenter(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("centerID", id.String()).Msg("Center deleted")
	ctx.Status(http.StatusNoContent)
}
