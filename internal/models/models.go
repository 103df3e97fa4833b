// Package models defines the request and response shapes of the HTTP API.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// Nothing here is persisted; every value lives for one request.
package models

// AnalysisResponse is returned by POST /api/v1/analyses/:action.
type AnalysisResponse struct {
	ID           string           `json:"id"`
	Action       string           `json:"action"`
	Heading      string           `json:"heading"`
	ReportTitle  string           `json:"report_title"`
	ResponseText string           `json:"response_text"` // Model answer, verbatim
	Model        string           `json:"model,omitempty"`
	Extraction   ExtractionInfo   `json:"extraction"`
	Report       ReportAttachment `json:"report"`
}

// ExtractionInfo summarizes what was pulled out of the uploaded resume.
type ExtractionInfo struct {
	PageCount   int  `json:"page_count"`
	WordCount   int  `json:"word_count"`
	Placeholder bool `json:"placeholder"` // True when no text could be extracted
}

// ReportAttachment carries the rendered PDF inline so the page can offer
// it for download without the server keeping a copy.
type ReportAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	PageCount   int    `json:"page_count"`
	Data        []byte `json:"data"` // encoding/json base64-encodes []byte
}

// CreateReportRequest is the JSON body for POST /api/v1/reports.
type CreateReportRequest struct {
	Action string `json:"action" binding:"required"`
	Body   string `json:"body"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
}
