package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/models"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/analysis"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
	pdfservice "github.com/Shimizu-Technology/ats-resume-expert/internal/services/pdf"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/report"
)

// fakeDispatcher answers every request the same way and counts calls.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
	last  dispatch.Request
	text  string
	err   error
}

func (f *fakeDispatcher) Generate(_ context.Context, req dispatch.Request) (*dispatch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &dispatch.Response{Text: f.text, Model: "fake-model"}, nil
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestRouter wires the handlers the same way the real router does,
// minus CORS and access logs.
func newTestRouter(d dispatch.Dispatcher, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := analysis.NewService(pdfservice.Extractor{}, d, report.NewRenderer())
	h := NewHandler(svc, "fake-model", "test", maxUpload)

	r := gin.New()
	r.GET("/", h.ServeApp)
	r.GET("/api/v1/health", h.HealthCheck)
	r.GET("/api/v1/actions", h.ListActions)
	r.POST("/api/v1/analyses/:action", h.RunAnalysis)
	r.POST("/api/v1/reports", h.ExportReport)
	return r
}

func resumePDF(t *testing.T, text string) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Text(50, 60, text)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("building resume PDF: %v", err)
	}
	return buf.Bytes()
}

// uploadRequest builds a multipart analysis request. A nil file leaves the
// file field out entirely.
func uploadRequest(t *testing.T, url, filename string, file []byte, jobDescription string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if file != nil {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(file)
	}
	if err := mw.WriteField("job_description", jobDescription); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an ErrorResponse: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestRunAnalysisRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantError  string
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/review", "", nil, "Seeking a Go engineer")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_upload",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/analyses/review", strings.NewReader("job_description=x"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_upload",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/review", "resume.pdf", []byte{}, "")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_upload",
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/review", "resume.docx", []byte("PK\x03\x04"), "")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_file_type",
		},
		{
			name: "not a pdf",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/review", "resume.pdf", []byte("plain text"), "")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_pdf",
		},
		{
			name: "corrupt pdf",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/review", "resume.pdf", []byte("%PDF-1.4 broken"), "")
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unreadable_pdf",
		},
		{
			name: "unknown action",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/v1/analyses/cover_letter", "resume.pdf", []byte("%PDF-1.4"), "")
			},
			wantStatus: http.StatusNotFound,
			wantError:  "unknown_action",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 8<<10)...)
				return uploadRequest(t, "/api/v1/analyses/review", "resume.pdf", big, "")
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "upload_too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{text: "unused"}
			r := newTestRouter(d, 4<<10)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req(t))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			resp := decodeError(t, w)
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if n := d.callCount(); n != 0 {
				t.Errorf("dispatcher called %d times, want 0", n)
			}
		})
	}
}

func TestRunAnalysisMissingUploadMessage(t *testing.T) {
	d := &fakeDispatcher{text: "unused"}
	r := newTestRouter(d, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/analyses/3", "", nil, ""))

	if resp := decodeError(t, w); resp.Message != "⚠️ Please upload a resume." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRunAnalysisJSON(t *testing.T) {
	d := &fakeDispatcher{text: "**Match: 82%**\nMissing: Kubernetes"}
	r := newTestRouter(d, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/analyses/match_score", "resume.pdf",
		resumePDF(t, "Experienced backend engineer, 5 years Go and distributed systems."),
		"Seeking senior distributed systems engineer"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}

	var resp models.AnalysisResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.Action != "match_score" || resp.ReportTitle != "ATS Match Report" {
		t.Errorf("action/title = %q/%q", resp.Action, resp.ReportTitle)
	}
	if resp.Heading != "📊 Match Percentage & Analysis" {
		t.Errorf("heading = %q", resp.Heading)
	}
	if resp.ResponseText != "**Match: 82%**\nMissing: Kubernetes" {
		t.Errorf("response_text = %q", resp.ResponseText)
	}
	if resp.Report.Filename != "ats_match.pdf" || resp.Report.ContentType != "application/pdf" {
		t.Errorf("report = %s / %s", resp.Report.Filename, resp.Report.ContentType)
	}
	if !bytes.HasPrefix(resp.Report.Data, []byte("%PDF-")) {
		t.Error("report data is not a PDF")
	}
	if resp.Extraction.PageCount != 1 || resp.Extraction.Placeholder {
		t.Errorf("extraction = %+v", resp.Extraction)
	}

	if d.callCount() != 1 {
		t.Errorf("dispatcher called %d times, want 1", d.callCount())
	}
	if d.last.JobDescription != "Seeking senior distributed systems engineer" {
		t.Errorf("job description sent = %q", d.last.JobDescription)
	}
}

func TestRunAnalysisPDFFormat(t *testing.T) {
	d := &fakeDispatcher{text: "Strengths: Go\nWeaknesses: none listed"}
	r := newTestRouter(d, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/analyses/review?format=pdf", "resume.pdf", resumePDF(t, "Jane Doe"), ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="resume_review.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if w.Header().Get("X-Analysis-ID") == "" {
		t.Error("X-Analysis-ID missing")
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestRunAnalysisDispatchErrors(t *testing.T) {
	tests := []struct {
		reason     dispatch.Reason
		wantStatus int
	}{
		{dispatch.ReasonAuth, http.StatusBadGateway},
		{dispatch.ReasonQuota, http.StatusTooManyRequests},
		{dispatch.ReasonNetwork, http.StatusGatewayTimeout},
		{dispatch.ReasonMalformed, http.StatusBadGateway},
		{dispatch.ReasonBlocked, http.StatusUnprocessableEntity},
		{dispatch.ReasonUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			d := &fakeDispatcher{err: dispatch.NewError(tt.reason, errors.New("upstream said no"))}
			r := newTestRouter(d, 1<<20)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, "/api/v1/analyses/skill_gap", "resume.pdf", resumePDF(t, "Jane Doe"), ""))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeError(t, w)
			if resp.Error != string(tt.reason) {
				t.Errorf("error = %q, want %q", resp.Error, tt.reason)
			}
			if resp.Message != dispatch.Message(tt.reason) {
				t.Errorf("message = %q, want %q", resp.Message, dispatch.Message(tt.reason))
			}
		})
	}
}

func TestExportReport(t *testing.T) {
	r := newTestRouter(&fakeDispatcher{}, 1<<20)

	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantFilename string
	}{
		{name: "skill gap", body: `{"action":"skill_gap","body":"Learn Kubernetes\nGet AWS certified"}`, wantStatus: http.StatusOK, wantFilename: "skill_improvement.pdf"},
		{name: "numbered alias", body: `{"action":"3","body":"Match: 60%"}`, wantStatus: http.StatusOK, wantFilename: "ats_match.pdf"},
		{name: "empty body still renders", body: `{"action":"review"}`, wantStatus: http.StatusOK, wantFilename: "resume_review.pdf"},
		{name: "missing action", body: `{"body":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown action", body: `{"action":"cover_letter","body":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "not json", body: `action=review`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.wantFilename) {
				t.Errorf("Content-Disposition = %q, want filename %q", cd, tt.wantFilename)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
				t.Error("body is not a PDF")
			}
		})
	}
}

func TestHealthAndActions(t *testing.T) {
	r := newTestRouter(&fakeDispatcher{}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var health models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health.Status != "ok" || health.Model != "fake-model" {
		t.Errorf("health = %+v", health)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil))
	var actions []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &actions); err != nil {
		t.Fatalf("decoding actions: %v", err)
	}
	if len(actions) != 3 || actions[0]["action"] != "review" {
		t.Errorf("actions = %v", actions)
	}
	if _, leaked := actions[0]["Instruction"]; leaked {
		t.Error("instruction leaked into the actions list")
	}
}

func TestServeApp(t *testing.T) {
	r := newTestRouter(&fakeDispatcher{}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, want := range []string{"ATS Resume Expert", "/api/v1/analyses/", "response-box"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}
