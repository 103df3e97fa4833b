// Package openrouter sends resume analyses through OpenRouter.
//
// OpenRouter provides a unified API for multiple LLM providers (OpenAI,
// Anthropic, Google, etc.) using a single API key. The request format
// follows the OpenAI chat completions standard. It is the alternative to
// the gemini package when LLM_PROVIDER=openrouter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Shimizu-Technology/ats-resume-expert/internal/services/dispatch"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "google/gemini-flash-1.5"

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrMissingAPIKey is returned when the client is built without a credential.
var ErrMissingAPIKey = errors.New("openrouter: API key not configured; set OPENROUTER_API_KEY")

// Options configures the OpenRouter client.
type Options struct {
	APIKey  string
	Model   string // Defaults to DefaultModel
	BaseURL string // Defaults to DefaultBaseURL
}

// Client handles analysis requests against OpenRouter.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates an OpenRouter client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		// Go Pattern: Always configure timeouts on HTTP clients.
		// The default http.Client has NO timeout, so a stuck upstream would
		// hold the request forever.
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // LLMs can be slow
		},
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// --- OpenRouter API types ---
// These match the OpenAI chat completions format used by OpenRouter.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage uses the array form of content so the three items stay
// separate parts of one user turn.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string    `json:"model"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Generate sends the instruction, resume text and job description as three
// text parts of a single user message and returns the answer verbatim.
func (c *Client) Generate(ctx context.Context, req dispatch.Request) (*dispatch.Response, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildParts(req)},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, dispatch.NewError(dispatch.ReasonUpstream, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, dispatch.NewError(dispatch.ReasonUpstream, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://github.com/Shimizu-Technology/ats-resume-expert")
	httpReq.Header.Set("X-Title", "ATS Resume Expert")

	log.Printf("🤖 Sending analysis to %s via OpenRouter (%d resume chars, %d job description chars)",
		c.model, len(req.Document), len(req.JobDescription))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, dispatch.NewError(dispatch.ReasonOf(err), fmt.Errorf("OpenRouter request failed: %w", err))
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dispatch.NewError(dispatch.ReasonOf(err), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, dispatch.NewError(reasonForStatus(resp.StatusCode),
			fmt.Errorf("OpenRouter returned %d: %s", resp.StatusCode, errorMessage(body)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, dispatch.NewError(dispatch.ReasonMalformed, fmt.Errorf("failed to parse response: %w", err))
	}

	// OpenRouter can report provider errors inside a 200 response
	if chatResp.Error != nil {
		return nil, dispatch.NewError(reasonForStatus(chatResp.Error.Code),
			fmt.Errorf("OpenRouter error: %s", chatResp.Error.Message))
	}

	if len(chatResp.Choices) == 0 {
		return nil, dispatch.NewError(dispatch.ReasonMalformed, errors.New("no response from model"))
	}

	choice := chatResp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, dispatch.NewError(dispatch.ReasonBlocked, errors.New("response withheld by content filter"))
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, dispatch.NewError(dispatch.ReasonMalformed, errors.New("response carried no text"))
	}

	model := chatResp.Model
	if model == "" {
		model = c.model
	}

	return &dispatch.Response{Text: choice.Message.Content, Model: model}, nil
}

// buildParts keeps the positional order instruction, document, job
// description and leaves out blank items.
func buildParts(req dispatch.Request) []contentPart {
	parts := make([]contentPart, 0, 3)
	for _, text := range []string{req.Instruction, req.Document, req.JobDescription} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, contentPart{Type: "text", Text: text})
	}
	return parts
}

// reasonForStatus maps an OpenRouter status code to a dispatch reason.
// 402 means the account ran out of credits.
func reasonForStatus(code int) dispatch.Reason {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return dispatch.ReasonAuth
	case code == http.StatusPaymentRequired, code == http.StatusTooManyRequests:
		return dispatch.ReasonQuota
	case code == http.StatusRequestTimeout, code >= 500:
		return dispatch.ReasonNetwork
	default:
		return dispatch.ReasonUpstream
	}
}

// errorMessage pulls error.message out of an error body, falling back to
// the raw body.
func errorMessage(body []byte) string {
	var parsed struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}
