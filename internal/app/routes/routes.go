package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/uniconnect/backend/internal/app/controllers"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/middleware"
	"github.com/uniconnect/backend/internal/pkg/websocket"
)

// Controllers groups the handlers SetupRouter mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Connection *controllers.ConnectionController
	Chat       *controllers.ChatController
	Job        *controllers.JobController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	gateway *websocket.Gateway,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		// Credential endpoints sit behind the fixed-window limiter
		limited := auth.Group("")
		limited.Use(rateLimiter.Limit())
		{
			limited.POST("/register", ctrl.Auth.Register)
			limited.POST("/login", ctrl.Auth.Login)
		}

		auth.POST("/refresh-token", ctrl.Auth.RefreshToken)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.GET("/verify-email", ctrl.Auth.VerifyEmail)
		auth.POST("/resend-verification", ctrl.Auth.ResendVerification)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	users := authenticated.Group("/users")
	{
		users.GET("", ctrl.User.ListUsers)
		users.GET("/profile", ctrl.User.GetProfile)
		users.PUT("/profile", ctrl.User.UpdateProfile)
		users.PUT("/profile/password", ctrl.User.ChangePassword)
		users.PUT("/profile/photo", ctrl.User.UpdateProfilePhoto)
		users.DELETE("/profile/photo", ctrl.User.DeleteProfilePhoto)
		users.GET("/:id", ctrl.User.GetUser)

		admin := users.Group("")
		admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			admin.PUT("/:id/active", ctrl.User.SetUserActive)
		}
	}

	connections := authenticated.Group("/connections")
	{
		connections.POST("", ctrl.Connection.SendRequest)
		connections.GET("", ctrl.Connection.ListConnections)
		connections.GET("/requests", ctrl.Connection.ListIncoming)
		connections.GET("/sent", ctrl.Connection.ListSent)
		connections.GET("/status/:userId", ctrl.Connection.StatusWith)
		connections.PUT("/:id/respond", ctrl.Connection.Respond)
		connections.PUT("/block/:userId", ctrl.Connection.Block)
		connections.DELETE("/:userId", ctrl.Connection.Remove)
	}

	chats := authenticated.Group("/chats")
	{
		chats.GET("", ctrl.Chat.ListConversations)
		chats.GET("/unread-count", ctrl.Chat.UnreadCount)
		chats.POST("/messages", ctrl.Chat.SendMessage)
		chats.DELETE("/messages/:id", ctrl.Chat.DeleteMessage)
		chats.GET("/:userId/messages", ctrl.Chat.GetConversation)
		chats.PUT("/:userId/read", ctrl.Chat.MarkConversationRead)
	}

	jobs := authenticated.Group("/jobs")
	{
		jobs.POST("", ctrl.Job.CreateJob)
		jobs.GET("", ctrl.Job.ListJobs)
		jobs.GET("/mine", ctrl.Job.ListMyJobs)
		jobs.GET("/applications/mine", ctrl.Job.ListMyApplications)
		jobs.PUT("/applications/:id/status", ctrl.Job.UpdateApplicationStatus)
		jobs.GET("/:id", ctrl.Job.GetJob)
		jobs.PUT("/:id", ctrl.Job.UpdateJob)
		jobs.DELETE("/:id", ctrl.Job.DeleteJob)
		jobs.POST("/:id/apply", ctrl.Job.Apply)
		jobs.GET("/:id/applications", ctrl.Job.ListApplications)
		jobs.GET("/:id/applications/export", ctrl.Job.ExportApplicants)
	}

	// WebSocket upgrade shares the JWT middleware; the token may come in via
	// the Authorization header or the token query parameter.
	authenticated.GET("/ws", gateway.HandleConnection)

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
