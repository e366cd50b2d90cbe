package routes

import (
	"net/http"

	"github.com/Simoh8/pamoja-vote/internal/app/controllers"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth   *controllers.AuthController
	User   *controllers.UserController
	Center *controllers.CenterController
	Squad  *controllers.SquadController
	Event  *controllers.EventController
	Invite *controllers.InviteController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/verify-otp", c.Auth.VerifyOTP)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/password-reset", c.Auth.ResetPassword)
	}

	v1.GET("/squads/public", c.Squad.ListPublicSquads)
	v1.GET("/centers/county/:county", c.Center.ListCentersByCounty)

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", c.Auth.Logout)

	users := authenticated.Group("/users")
	{
		users.GET("/profile", c.User.GetProfile)
		users.PATCH("/profile", c.User.UpdateProfile)
	}

	centers := authenticated.Group("/centers")
	{
		centers.GET("", c.Center.ListCenters)
		centers.POST("", c.Center.CreateCenter)
		centers.GET("/nearby", c.Center.NearbyCenters)
		centers.GET("/:id", c.Center.GetCenter)
		centers.PATCH("/:id", c.Center.UpdateCenter)
		centers.DELETE("/:id", c.Center.DeleteCenter)
	}

	squads := authenticated.Group("/squads")
	{
		squads.GET("", c.Squad.ListSquads)
		squads.POST("", c.Squad.CreateSquad)
		squads.GET("/mine", c.Squad.MySquads)
		squads.GET("/leaderboard", c.Squad.Leaderboard)
		squads.GET("/:id", c.Squad.GetSquad)
		squads.PATCH("/:id", c.Squad.UpdateSquad)
		squads.DELETE("/:id", c.Squad.DeleteSquad)
		squads.POST("/:id/join", c.Squad.JoinSquad)
		squads.POST("/:id/leave", c.Squad.LeaveSquad)
		squads.GET("/:id/members", c.Squad.ListMembers)
		squads.GET("/:id/my-membership", c.Squad.MyMembership)
		squads.GET("/:id/events", c.Event.SquadEvents)
	}

	memberships := authenticated.Group("/memberships")
	{
		memberships.GET("", c.Squad.MyMemberships)
		memberships.POST("/:id/role", c.Squad.ChangeRole)
		memberships.PATCH("/:id/registration", c.Squad.UpdateRegistrationStatus)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", c.Event.ListEvents)
		events.POST("", c.Event.CreateEvent)
		events.GET("/upcoming", c.Event.UpcomingEvents)
		events.GET("/my-rsvps", c.Event.MyRSVPs)
		events.GET("/:id", c.Event.GetEvent)
		events.PATCH("/:id", c.Event.UpdateEvent)
		events.DELETE("/:id", c.Event.DeleteEvent)
		events.POST("/:id/rsvp", c.Event.RSVP)
		events.GET("/:id/rsvps", c.Event.ListRSVPs)
	}

	invites := authenticated.Group("/invites")
	{
		invites.GET("", c.Invite.ListMyInvites)
		invites.POST("", c.Invite.CreateInvite)
		invites.POST("/bulk", c.Invite.BulkInvite)
		invites.POST("/whatsapp", c.Invite.WhatsAppInvite)
		invites.GET("/:id", c.Invite.GetInvite)
	}
}
