package main

import (
	"github.com/gin-gonic/gin"

	"github.com/formgate/formgate/backend/internal/handlers"
	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Public form routes (anonymous, token addressed, rate limited)
		publicFormHandler := handlers.NewPublicFormHandler(models.GetDB())
		public := api.Group("/public", middleware.PublicFormRateLimit())
		{
			public.GET("/forms/:token", publicFormHandler.Get)
			public.POST("/forms/:token/submissions", publicFormHandler.Submit)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Project members
			memberHandler := handlers.NewProjectMemberHandler(models.GetDB())
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/members", memberHandler.Add)
			protected.PUT("/projects/:id/members/:user_id", memberHandler.Update)
			protected.DELETE("/projects/:id/members/:user_id", memberHandler.Remove)

			// Project roles
			roleHandler := handlers.NewRoleHandler(models.GetDB())
			protected.GET("/projects/:id/roles", roleHandler.List)
			protected.POST("/projects/:id/roles", roleHandler.Create)
			protected.PUT("/projects/:id/roles/:role_id", roleHandler.Update)
			protected.DELETE("/projects/:id/roles/:role_id", roleHandler.Delete)
			protected.GET("/projects/:id/roles/:role_id/assignments", roleHandler.Holders)
			protected.POST("/projects/:id/roles/:role_id/assignments", roleHandler.Assign)
			protected.DELETE("/projects/:id/roles/:role_id/assignments/:user_id", roleHandler.Unassign)

			// Task templates
			templateHandler := handlers.NewTaskTemplateHandler(svc.templateService, models.GetDB())
			protected.GET("/projects/:id/task-templates", templateHandler.List)
			protected.POST("/projects/:id/task-templates", templateHandler.Create)
			protected.PUT("/projects/:id/task-templates/:template_id", templateHandler.Update)
			protected.DELETE("/projects/:id/task-templates/:template_id", templateHandler.Delete)
			protected.POST("/projects/:id/task-templates/:template_id/instantiate", templateHandler.Instantiate)

			// Forms
			formHandler := handlers.NewFormHandler(models.GetDB())
			protected.GET("/forms", formHandler.List)
			protected.GET("/forms/:id", formHandler.GetByID)
			protected.POST("/forms", formHandler.Create)
			protected.PUT("/forms/:id", formHandler.Update)
			protected.DELETE("/forms/:id", formHandler.Delete)
			protected.GET("/forms/:id/roles", formHandler.RoleRequirements)

			// Form access gate: the endpoint the frontend calls before
			// rendering any form.
			formAccessHandler := handlers.NewFormAccessHandler(models.GetDB())
			protected.GET("/forms/:id/view", formAccessHandler.View)
			protected.POST("/forms/:id/submissions", formAccessHandler.Submit)

			// Submissions (review, admin checked in handler)
			submissionHandler := handlers.NewSubmissionHandler(models.GetDB())
			protected.GET("/forms/:id/submissions", submissionHandler.List)
			protected.GET("/submissions/:id", submissionHandler.Get)

			// Tasks
			taskHandler := handlers.NewTaskHandler(models.GetDB())
			protected.GET("/tasks", taskHandler.List)
			protected.GET("/tasks/:id", taskHandler.Get)
			protected.PUT("/tasks/:id/status", taskHandler.UpdateStatus)
			protected.DELETE("/tasks/:id", taskHandler.Delete)
		}

		// Global admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.GlobalAdminRequired(), middleware.AuditLog())
		{
			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)

			// System Config
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB(), svc.calendarService)
			admin.GET("/system-config/ldap", systemConfigHandler.GetLDAPConfig)
			admin.PUT("/system-config/ldap", systemConfigHandler.UpdateLDAPConfig)
			admin.GET("/system-config/auth-session", systemConfigHandler.GetAuthSessionConfig)
			admin.PUT("/system-config/auth-session", systemConfigHandler.UpdateAuthSessionConfig)
			admin.GET("/system-config/calendar", systemConfigHandler.GetCalendarConfig)
			admin.PUT("/system-config/calendar", systemConfigHandler.UpdateCalendarConfig)
			admin.GET("/system-config/log-retention", systemConfigHandler.GetLogRetention)
			admin.PUT("/system-config/log-retention", systemConfigHandler.UpdateLogRetention)
		}
	}
}
