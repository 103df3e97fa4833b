// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/models"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/analysis"
)

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// Tests build a Handler around a Service with fake dependencies.
type Handler struct {
	Analysis       *analysis.Service
	Model          string // Model name reported by the health check
	Version        string
	MaxUploadBytes int64
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(svc *analysis.Service, model, version string, maxUploadBytes int64) *Handler {
	return &Handler{
		Analysis:       svc,
		Model:          model,
		Version:        version,
		MaxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Version: h.Version,
		Model:   h.Model,
	})
}

// ListActions returns the analyses the page can trigger, in button order.
// GET /api/v1/actions
func (h *Handler) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, analysis.Specs())
}
