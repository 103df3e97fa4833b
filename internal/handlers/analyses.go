// analyses.go handles the resume analysis endpoint.
//
// POST /api/v1/analyses/:action — Upload a resume PDF (field "file") and an
// optional job description (field "job_description"), run the analysis and
// return the model response plus a downloadable report.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/middleware"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/models"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/analysis"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
	pdfservice "github.com/Shimizu-Technology/ats-resume-expert/internal/services/pdf"
)

// MissingUploadMessage is shown when an action is triggered with no resume.
const MissingUploadMessage = "⚠️ Please upload a resume."

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned. Nobody reads the body, it only shows up in access logs.
const statusClientClosedRequest = 499

// RunAnalysis handles a resume upload and runs the requested analysis.
// POST /api/v1/analyses/:action
//
// Add ?format=pdf to get the report PDF itself instead of JSON.
func (h *Handler) RunAnalysis(c *gin.Context) {
	action, err := analysis.ParseAction(c.Param("action"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "unknown_action",
			Message: fmt.Sprintf("Unknown analysis '%s'. See GET /api/v1/actions.", c.Param("action")),
			Code:    http.StatusNotFound,
		})
		return
	}

	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	// Get the uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "upload_too_large",
				Message: fmt.Sprintf("The resume is larger than the %d MB limit.", h.MaxUploadBytes>>20),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return
		}

		// No file at all is a user warning, not a failure
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_upload",
			Message: MissingUploadMessage,
			Code:    http.StatusBadRequest,
		})
		return
	}
	defer file.Close()

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_file_type",
			Message: fmt.Sprintf("Unsupported file format '%s'. Only .pdf files are accepted.", ext),
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Go Pattern: io.ReadAll reads the entire reader into a byte slice.
	// The upload is already capped by MaxBytesReader and the pdf library
	// needs random access anyway.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "read_error",
			Message: "Failed to read uploaded file",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// An empty file is the same as no file
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_upload",
			Message: MissingUploadMessage,
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Validate PDF magic bytes
	if !pdfservice.ValidatePDF(data) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_pdf",
			Message: "The uploaded file does not appear to be a valid PDF",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Go Pattern: The task is bound to the request context, so a client
	// that disconnects cancels the model call along with it.
	task := h.Analysis.Start(c.Request.Context(), analysis.Request{
		Action:         action,
		Document:       data,
		Filename:       header.Filename,
		JobDescription: c.PostForm("job_description"),
	})

	outcome, err := task.Wait()
	if err != nil {
		h.respondAnalysisError(c, action, err)
		return
	}

	if c.Query("format") == "pdf" {
		c.Header("X-Analysis-ID", outcome.ID)
		sendReport(c, outcome.Report)
		return
	}

	c.JSON(http.StatusOK, toAnalysisResponse(outcome))
}

// respondAnalysisError maps a pipeline error onto a status and message.
// Dispatch failures carry a reason; the message for it comes from the
// dispatch package so every surface shows the same sentence.
func (h *Handler) respondAnalysisError(c *gin.Context, action analysis.Action, err error) {
	rid := middleware.GetRequestID(c)

	switch {
	case errors.Is(err, analysis.ErrMissingDocument):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_upload",
			Message: MissingUploadMessage,
			Code:    http.StatusBadRequest,
		})
		return

	case errors.Is(err, pdfservice.ErrUnreadablePDF):
		log.Printf("⚠️  Analysis %s [rid=%s]: unreadable PDF: %v", action, rid, err)
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "unreadable_pdf",
			Message: "The uploaded PDF could not be read. Try exporting it again from your editor.",
			Code:    http.StatusUnprocessableEntity,
		})
		return
	}

	var de *dispatch.Error
	if errors.As(err, &de) {
		if de.Reason == dispatch.ReasonCanceled {
			log.Printf("🛑 Analysis %s [rid=%s] canceled by client", action, rid)
			c.AbortWithStatus(statusClientClosedRequest)
			return
		}

		log.Printf("❌ Analysis %s [rid=%s] failed (%s): %v", action, rid, de.Reason, de.Err)
		status := statusForReason(de.Reason)
		c.JSON(status, models.ErrorResponse{
			Error:   string(de.Reason),
			Message: dispatch.Message(de.Reason),
			Code:    status,
		})
		return
	}

	log.Printf("❌ Analysis %s [rid=%s] failed: %v", action, rid, err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "report_failed",
		Message: "The analysis finished but the report could not be generated.",
		Code:    http.StatusInternalServerError,
	})
}

// statusForReason picks the HTTP status for a dispatch failure.
func statusForReason(reason dispatch.Reason) int {
	switch reason {
	case dispatch.ReasonQuota:
		return http.StatusTooManyRequests
	case dispatch.ReasonNetwork:
		return http.StatusGatewayTimeout
	case dispatch.ReasonBlocked:
		return http.StatusUnprocessableEntity
	case dispatch.ReasonCanceled:
		return statusClientClosedRequest
	default: // auth, malformed_response, upstream
		return http.StatusBadGateway
	}
}

func toAnalysisResponse(o *analysis.Outcome) models.AnalysisResponse {
	resp := models.AnalysisResponse{
		ID:           o.ID,
		Action:       string(o.Action),
		Heading:      o.Heading,
		ReportTitle:  o.Title,
		ResponseText: o.ResponseText,
		Model:        o.Model,
	}
	if o.Extraction != nil {
		resp.Extraction = models.ExtractionInfo{
			PageCount:   o.Extraction.PageCount,
			WordCount:   o.Extraction.WordCount,
			Placeholder: o.Extraction.Placeholder,
		}
	}
	if o.Report != nil {
		resp.Report = models.ReportAttachment{
			Filename:    o.Report.Filename,
			ContentType: o.Report.ContentType,
			PageCount:   o.Report.PageCount,
			Data:        o.Report.Data,
		}
	}
	return resp
}
