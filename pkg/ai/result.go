package ai

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a completion produced no answer.
type FailureKind string

const (
	FailureAPI               FailureKind = "api"
	FailureStreamUnavailable FailureKind = "stream_unavailable"
	FailureRequest           FailureKind = "request"
	FailureTransport         FailureKind = "transport"
	FailureCanceled          FailureKind = "canceled"
)

// ErrStreamUnavailable is returned when a successful response has no body to read.
var ErrStreamUnavailable = errors.New("failed to get response reader")

// APIError is a non-2xx response from the completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.StatusCode, e.Body)
}

// RequestError marks failures that happened before anything was sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Failure describes a completion that did not produce an answer.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Result is either the accumulated answer text or a Failure.
type Result struct {
	Text    string
	Failure *Failure
}

// TextResult wraps a finished answer.
func TextResult(text string) Result {
	return Result{Text: text}
}

// FailureResult converts err into a failed Result.
func FailureResult(err error) Result {
	return Result{Failure: NewFailure(err)}
}

// OK reports whether the result carries an answer.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Display returns what the UI shows: the answer, or "Error: <message>".
func (r Result) Display() string {
	if r.Failure != nil {
		return "Error: " + r.Failure.Message
	}
	return r.Text
}

// NewFailure classifies err. A nil err yields nil.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}

	f := &Failure{Kind: FailureTransport, Message: errorMessage(err)}

	var apiErr *APIError
	var reqErr *RequestError
	switch {
	case errors.As(err, &apiErr):
		f.Kind = FailureAPI
		f.Status = apiErr.StatusCode
	case errors.Is(err, ErrStreamUnavailable):
		f.Kind = FailureStreamUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		f.Kind = FailureCanceled
	case errors.As(err, &reqErr):
		f.Kind = FailureRequest
	}

	return f
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%#v", err)
}
