// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/handlers"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog(nil))
	r.Use(middleware.CORS(allowedOrigins))

	// Uploads larger than this spill to temp files instead of memory
	r.MaxMultipartMemory = h.MaxUploadBytes

	// --- UI ---
	r.GET("/", h.ServeApp)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/actions", h.ListActions)

		// Analyses (multipart upload, one model call each)
		api.POST("/analyses/:action", h.RunAnalysis)

		// Report download (stateless re-render of a response text)
		api.POST("/reports", h.ExportReport)
	}

	return r
}
