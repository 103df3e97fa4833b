// Package dispatch defines the contract for sending a resume analysis to a
// hosted text-generation model.
//
// A request is always three positional items: the fixed task instruction,
// the extracted resume text, and the job description the user typed in.
// The model's answer comes back verbatim.
//
// Failures are never left as bare errors: every implementation returns an
// *Error with a named Reason, so the HTTP layer can tell the user "quota
// exceeded" instead of a generic 500.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Request is the three-item payload sent to the model.
type Request struct {
	Instruction    string
	Document       string
	JobDescription string
}

// Response is the model's answer, unmodified.
type Response struct {
	Text  string
	Model string
}

// Dispatcher sends one request to the model and waits for the answer.
// There are no retries and no streaming.
type Dispatcher interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Reason names why a dispatch failed.
// Go Pattern: A string type with named constants. The values double as the
// error codes in API responses.
type Reason string

const (
	ReasonAuth      Reason = "auth"               // credential missing or rejected
	ReasonQuota     Reason = "quota"              // rate or usage quota exhausted
	ReasonNetwork   Reason = "network"            // transport failure or upstream unavailable
	ReasonMalformed Reason = "malformed_response" // payload carried no usable text
	ReasonBlocked   Reason = "blocked"            // prompt rejected by safety filters
	ReasonCanceled  Reason = "canceled"           // caller gave up before the answer arrived
	ReasonUpstream  Reason = "upstream"           // any other rejection by the service
)

// Error is a dispatch failure with a named reason.
type Error struct {
	Reason Reason
	Err    error
}

// NewError wraps err with reason.
func NewError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dispatch failed (%s)", e.Reason)
	}
	return fmt.Sprintf("dispatch failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf reports the failure reason carried by err.
//
// Errors that were never classified are inspected for context and network
// failures; anything else is ReasonUpstream. A nil error has no reason.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}

	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}

	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ReasonNetwork
	}

	return ReasonUpstream
}

// Message returns a sentence suitable for showing to the user.
func Message(reason Reason) string {
	switch reason {
	case ReasonAuth:
		return "The AI service rejected our credentials. Please contact the administrator."
	case ReasonQuota:
		return "The AI service quota has been exceeded. Please try again in a few minutes."
	case ReasonNetwork:
		return "Could not reach the AI service. Please try again."
	case ReasonMalformed:
		return "The AI service returned an empty or unreadable answer. Please try again."
	case ReasonBlocked:
		return "The AI service declined to answer this request."
	case ReasonCanceled:
		return "The analysis was cancelled before it finished."
	default:
		return "The AI service could not complete the analysis."
	}
}
