package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/collabmatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Data.MaxUploadMB << 20

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		data := api.Group("/data")
		{
			data.POST("/upload", handler.UploadData)
			data.POST("/reload", handler.ReloadData)
		}

		api.GET("/stats", handler.GetStats)
		api.POST("/verify", handler.VerifyAssignment)
		api.POST("/verify/batch", handler.VerifyBatch)
		api.POST("/export", handler.ExportBatch)
		api.POST("/influencers/search", handler.SearchInfluencer)

		profiles := api.Group("/profiles")
		{
			profiles.GET("", handler.ListProfiles)
			profiles.GET("/search", handler.SearchProfiles)
			profiles.GET("/:name", handler.GetProfile)
			profiles.PUT("/:name", handler.UpsertProfile)
			profiles.GET("/:name/collaborations", handler.GetCollaborations)
			profiles.POST("/:name/collaborations", handler.LogCollaboration)
			profiles.POST("/:name/summary", handler.GenerateSummary)
		}

		notion := api.Group("/notion")
		{
			notion.GET("/status", handler.GetNotionStatus)
			notion.POST("/token", handler.SaveNotionToken)
			notion.DELETE("/token", handler.ClearNotionToken)
			notion.POST("/sync", handler.SyncNotion)
		}
	}

	return router
}
