package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
	pdfservice "github.com/Shimizu-Technology/ats-resume-expert/internal/services/pdf"
	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/report"
)

var (
	// ErrMissingDocument means no resume was uploaded. Nothing else runs.
	ErrMissingDocument = errors.New("no resume uploaded")

	// ErrUnknownAction means the action isn't in the lookup table.
	ErrUnknownAction = errors.New("unknown analysis action")
)

// Extractor pulls text out of an uploaded document.
type Extractor interface {
	Extract(data []byte) (*pdfservice.ExtractionResult, error)
}

// Renderer lays a title and body out as a PDF.
type Renderer interface {
	Render(title, body string) (*bytes.Reader, error)
}

// Request is one analysis triggered by the user.
type Request struct {
	Action         Action
	Document       []byte // Raw PDF bytes; nil when nothing was uploaded
	Filename       string // Original upload name, for logs only
	JobDescription string
}

// Report is a rendered, downloadable PDF report.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
	PageCount   int
}

// Outcome is everything the caller shows or offers for download.
type Outcome struct {
	ID           string
	Action       Action
	Heading      string
	Title        string
	ResponseText string
	Model        string
	Extraction   *pdfservice.ExtractionResult
	Report       *Report
}

// Service wires the extractor, dispatcher and renderer into one pipeline.
// Go Pattern: Dependencies are interfaces, so tests swap in fakes and can
// count calls.
type Service struct {
	extractor  Extractor
	dispatcher dispatch.Dispatcher
	renderer   Renderer
}

// NewService creates an analysis service.
func NewService(ext Extractor, d dispatch.Dispatcher, r Renderer) *Service {
	return &Service{
		extractor:  ext,
		dispatcher: d,
		renderer:   r,
	}
}

// Run executes one analysis: extract → dispatch → render.
//
// A missing document returns ErrMissingDocument before anything else is
// touched. Dispatch failures come back as *dispatch.Error.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	spec, ok := Lookup(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if len(req.Document) == 0 {
		return nil, ErrMissingDocument
	}

	id := uuid.NewString()

	// Step 1: Extract the resume text (placeholder if nothing extractable)
	extraction, err := s.extractor.Extract(req.Document)
	if err != nil {
		if errors.Is(err, pdfservice.ErrNoDocument) {
			return nil, ErrMissingDocument
		}
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	if extraction.Placeholder {
		log.Printf("⚠️  Analysis %s: no extractable text in %q, sending placeholder", id, req.Filename)
	}

	// Step 2: Ask the model
	resp, err := s.await(ctx, dispatch.Request{
		Instruction:    spec.Instruction,
		Document:       extraction.Text,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return nil, err
	}

	// Step 3: Render the downloadable report
	rep, err := s.render(spec, resp.Text)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Analysis %s (%s) completed: %d response chars, %d report pages",
		id, spec.Action, len(resp.Text), rep.PageCount)

	return &Outcome{
		ID:           id,
		Action:       spec.Action,
		Heading:      spec.Heading,
		Title:        spec.ReportTitle,
		ResponseText: resp.Text,
		Model:        resp.Model,
		Extraction:   extraction,
		Report:       rep,
	}, nil
}

// RenderReport renders body under the action's report title and filename.
// Used to re-download a report without keeping anything server-side.
func (s *Service) RenderReport(action Action, body string) (*Report, error) {
	spec, ok := Lookup(action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return s.render(spec, body)
}

func (s *Service) render(spec Spec, body string) (*Report, error) {
	r, err := s.renderer.Render(spec.ReportTitle, body)
	if err != nil {
		return nil, fmt.Errorf("report rendering failed: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered report: %w", err)
	}

	return &Report{
		Filename:    spec.ReportFilename,
		ContentType: report.ContentType,
		Data:        data,
		PageCount:   report.PagesFor(len(report.SplitLines(body))),
	}, nil
}

// await is the pipeline's only suspension point. The dispatcher runs in its
// own goroutine; if ctx ends first we return immediately and abandon the
// upstream call. The SDK gets the same ctx, but the service offers no
// guarantee that an in-flight generation is actually stopped.
func (s *Service) await(ctx context.Context, req dispatch.Request) (*dispatch.Response, error) {
	type result struct {
		resp *dispatch.Response
		err  error
	}

	// Buffered so an abandoned dispatcher goroutine can still finish and exit
	done := make(chan result, 1)
	go func() {
		resp, err := s.dispatcher.Generate(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, dispatch.NewError(dispatch.ReasonOf(ctx.Err()), ctx.Err())
	case r := <-done:
		if r.err != nil {
			var de *dispatch.Error
			if errors.As(r.err, &de) {
				return nil, r.err
			}
			return nil, dispatch.NewError(dispatch.ReasonOf(r.err), r.err)
		}
		if r.resp == nil {
			return nil, dispatch.NewError(dispatch.ReasonMalformed, errors.New("dispatcher returned no response"))
		}
		return r.resp, nil
	}
}
