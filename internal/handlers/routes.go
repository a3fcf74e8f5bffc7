package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/workspace"
	"go.uber.org/zap"
)

// Register mounts every route on r. The sessions middleware carrying the
// profile cookie must already be installed.
func Register(r *gin.Engine, factory *workspace.Factory, logger *zap.Logger) {
	authHandler := NewAuthHandler(logger)
	taskHandler := NewTaskHandler(logger)
	sessionHandler := NewSessionHandler(logger)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"message":    "Taskboard API is running",
			"ai_enabled": factory.AIEnabled(),
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(middleware.Profile(), middleware.OpenWorkspace(factory))
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		api.GET("/session/events", sessionHandler.Events)

		// User routes (protected)
		api.GET("/users", middleware.RequireAuth(), authHandler.ListUsers)

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/stats", taskHandler.GetStats)
			tasks.POST("", middleware.RequireTeamLead(), taskHandler.CreateTask)
			tasks.POST("/generate", middleware.RequireTeamLead(), taskHandler.GenerateTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskAccess(), taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", middleware.RequireTeamLead(), middleware.RequireTaskAccess(), taskHandler.DeleteTask)
		}
	}
}
