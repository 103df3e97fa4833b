// export.go handles report downloads.
//
// POST /api/v1/reports — Render a response text as the action's PDF report
//
// Nothing is stored between requests, so the page posts back the response
// text it already holds and gets the same PDF the analysis produced.
//
// Response headers:
//   - Content-Type: application/pdf
//   - Content-Disposition: attachment with the action's fixed filename
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/models"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/analysis"
)

// ExportReport renders a downloadable report.
// POST /api/v1/reports
func (h *Handler) ExportReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be JSON with an 'action' field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	action, err := analysis.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unknown_action",
			Message: fmt.Sprintf("Unknown analysis '%s'. See GET /api/v1/actions.", req.Action),
			Code:    http.StatusBadRequest,
		})
		return
	}

	rep, err := h.Analysis.RenderReport(action, req.Body)
	if err != nil {
		if errors.Is(err, analysis.ErrUnknownAction) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unknown_action",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}

		log.Printf("❌ Report rendering failed for %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "report_failed",
			Message: "The report could not be generated.",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	sendReport(c, rep)
}

// sendReport writes a rendered report as a file download.
func sendReport(c *gin.Context, rep *analysis.Report) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Header("X-Report-Pages", fmt.Sprintf("%d", rep.PageCount))
	c.Data(http.StatusOK, rep.ContentType, rep.Data)
}
