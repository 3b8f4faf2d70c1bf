package main

import (
	"github.com/gin-gonic/gin"

	"github.com/chantierly/visadoc/internal/handlers"
	"github.com/chantierly/visadoc/internal/middleware"
	"github.com/chantierly/visadoc/internal/models"
	"github.com/chantierly/visadoc/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for the login endpoint
	loginLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects
			projectHandler := handlers.NewProjectHandler(db, svc.access)
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Project members
			memberHandler := handlers.NewProjectMemberHandler(svc.access)
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/members", memberHandler.Add)
			protected.PUT("/projects/:id/members/:userId", memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			// Documents and the visa workflow
			documentHandler := handlers.NewDocumentHandler(db, svc.access, svc.notifications, svc.blobs)
			protected.GET("/projects/:id/documents", documentHandler.List)
			protected.POST("/projects/:id/documents", documentHandler.Create)
			protected.GET("/documents/:id", documentHandler.GetByID)
			protected.GET("/documents/:id/download", documentHandler.Download)
			protected.POST("/documents/:id/transition", documentHandler.Transition)
			protected.GET("/documents/:id/history", documentHandler.History)
			protected.DELETE("/documents/:id", documentHandler.Delete)

			// Invitations
			invitationHandler := handlers.NewInvitationHandler(db, svc.access, svc.notifications)
			protected.GET("/projects/:id/invitations", invitationHandler.List)
			protected.POST("/projects/:id/invitations", invitationHandler.Invite)
			protected.GET("/invitations", invitationHandler.ListMine)
			protected.POST("/invitations/:id/respond", invitationHandler.Respond)
			protected.DELETE("/invitations/:id", invitationHandler.Cancel)

			// Notifications
			notificationHandler := handlers.NewNotificationHandler(svc.notifications)
			protected.GET("/notifications", notificationHandler.List)
			protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

			// Users (listing for member pickers)
			userHandler := handlers.NewUserHandler(db)
			protected.GET("/users", userHandler.List)
			protected.GET("/users/:id", userHandler.GetByID)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			userHandler := handlers.NewUserHandler(db)
			admin.POST("/users", userHandler.Create)

			systemLogHandler := handlers.NewSystemLogHandler(db)
			admin.GET("/system-logs", systemLogHandler.List)
		}
	}
}
