// Package gemini sends resume analyses to Google's Gemini models.
//
// It implements dispatch.Dispatcher with the official google.golang.org/genai
// SDK against the Gemini API backend (API-key authentication). Every error
// that leaves this package is a *dispatch.Error with a named reason.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrMissingAPIKey is returned when the client is built without a credential.
var ErrMissingAPIKey = errors.New("gemini: API key not configured; set GOOGLE_API_KEY")

// Options configures the Gemini client.
type Options struct {
	APIKey  string
	Model   string // Defaults to DefaultModel
	BaseURL string // Optional endpoint override
}

// Client handles analysis requests against the Gemini API.
type Client struct {
	genai *genai.Client
	model string
}

// New creates a Gemini client. The API key is validated here so a missing
// credential fails at startup, not on the first analysis.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{genai: gc, model: model}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the instruction, resume text and job description as three
// text parts of a single user turn and returns the answer verbatim.
func (c *Client) Generate(ctx context.Context, req dispatch.Request) (*dispatch.Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(buildParts(req), genai.RoleUser),
	}

	log.Printf("🤖 Sending analysis to %s (%d resume chars, %d job description chars)",
		c.model, len(req.Document), len(req.JobDescription))

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, classify(err)
	}

	if resp == nil {
		return nil, dispatch.NewError(dispatch.ReasonMalformed, errors.New("empty response"))
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, dispatch.NewError(dispatch.ReasonBlocked,
			fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, dispatch.NewError(dispatch.ReasonMalformed, errors.New("response carried no text"))
	}

	model := resp.ModelVersion
	if model == "" {
		model = c.model
	}

	return &dispatch.Response{Text: text, Model: model}, nil
}

// buildParts keeps the positional order instruction, document, job
// description. The API rejects empty parts, so blank items are left out.
func buildParts(req dispatch.Request) []*genai.Part {
	parts := make([]*genai.Part, 0, 3)
	for _, text := range []string{req.Instruction, req.Document, req.JobDescription} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, genai.NewPartFromText(text))
	}
	return parts
}

// classify turns an SDK or transport error into a *dispatch.Error.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return dispatch.NewError(reasonForAPIError(apiErr), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return dispatch.NewError(reasonForAPIError(*apiErrPtr), err)
	}
	return dispatch.NewError(dispatch.ReasonOf(err), err)
}

// reasonForAPIError maps a Gemini API error to a dispatch reason.
// Gemini reports an invalid key as 400 INVALID_ARGUMENT, so the message is
// checked as well as the status code.
func reasonForAPIError(e genai.APIError) dispatch.Reason {
	status := strings.ToUpper(e.Status)
	switch {
	case e.Code == http.StatusUnauthorized, e.Code == http.StatusForbidden,
		strings.Contains(status, "UNAUTHENTICATED"), strings.Contains(status, "PERMISSION_DENIED"):
		return dispatch.ReasonAuth
	case e.Code == http.StatusBadRequest && isKeyError(e.Message):
		return dispatch.ReasonAuth
	case e.Code == http.StatusTooManyRequests, strings.Contains(status, "RESOURCE_EXHAUSTED"):
		return dispatch.ReasonQuota
	case e.Code >= 500:
		return dispatch.ReasonNetwork
	default:
		return dispatch.ReasonUpstream
	}
}

func isKeyError(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key")
}
