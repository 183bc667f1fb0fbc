package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/repository"
	"github.com/mindmap-server/internal/service"
	"github.com/mindmap-server/pkg/logger"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	signer := auth.NewCookieSigner(cfg.Session.Secret)

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(sessionMiddleware(services.Auth, signer, cfg.Session, log))

	// Handlers
	authHandler := NewAuthHandler(services, signer, cfg.Session, log)
	mapHandler := NewMapHandler(services, log)
	folderHandler := NewFolderHandler(services, log)
	userHandler := NewUserHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(services.Store, log))

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", requireSession(), authHandler.Logout)
			authRoutes.GET("/me", requireSession(), authHandler.Me)
		}

		maps := api.Group("/maps", requireSession())
		{
			maps.GET("", mapHandler.GetMaps)
			maps.POST("", mapHandler.SaveMap)
			maps.GET("/export", exportHandler.StreamExport)
			maps.DELETE("/:id", mapHandler.DeleteMap)
			maps.PUT("/:id/trash", mapHandler.TrashMap)
			maps.PUT("/:id/restore", mapHandler.RestoreMap)
			maps.PUT("/:id/move", mapHandler.MoveMap)
		}

		folders := api.Group("/folders", requireSession())
		{
			folders.GET("", folderHandler.ListFolders)
			folders.POST("", folderHandler.CreateFolder)
			folders.PUT("/:id", folderHandler.RenameFolder)
			folders.DELETE("/:id", folderHandler.DeleteFolder)
		}

		admin := api.Group("/admin", requireSession(), requireAdmin())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.POST("/users", userHandler.CreateUser)
			admin.PUT("/users/:id", userHandler.UpdateUser)
			admin.DELETE("/users/:id", userHandler.DeleteUser)
			admin.GET("/stats", userHandler.Stats)
		}
	}

	// Web client
	router.NoRoute(staticHandler(cfg.Server, log))

	return router
}

// healthCheck returns the health status, pinging the store when there is one
func healthCheck(store repository.HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if store != nil {
			if err := store.HealthCheck(c.Request.Context()); err != nil {
				log.Error().Err(err).Msg("Database health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		})
	}
}
