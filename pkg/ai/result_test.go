package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestNewFailure_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   FailureKind
		status int
	}{
		{name: "api", err: &APIError{StatusCode: 429, Body: "slow down"}, kind: FailureAPI, status: 429},
		{name: "wrapped api", err: fmt.Errorf("call: %w", &APIError{StatusCode: 500, Body: "x"}), kind: FailureAPI, status: 500},
		{name: "stream", err: ErrStreamUnavailable, kind: FailureStreamUnavailable},
		{name: "canceled", err: fmt.Errorf("post: %w", context.Canceled), kind: FailureCanceled},
		{name: "deadline", err: context.DeadlineExceeded, kind: FailureCanceled},
		{name: "request", err: &RequestError{Err: errors.New("bad")}, kind: FailureRequest},
		{name: "other", err: errors.New("dial tcp: refused"), kind: FailureTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFailure(tt.err)
			if f.Kind != tt.kind {
				t.Fatalf("Expected kind %q, got %q", tt.kind, f.Kind)
			}
			if f.Status != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, f.Status)
			}
			if f.Message != tt.err.Error() {
				t.Fatalf("Expected message %q, got %q", tt.err.Error(), f.Message)
			}
		})
	}
}

func TestNewFailure_Nil(t *testing.T) {
	if NewFailure(nil) != nil {
		t.Fatal("Expected nil failure for nil error")
	}
}

func TestNewFailure_EmptyMessageFallsBackToStringForm(t *testing.T) {
	f := NewFailure(emptyError{})
	if f.Message == "" {
		t.Fatal("Expected a non-empty message")
	}
}

func TestResultDisplay(t *testing.T) {
	if got := TextResult("answer").Display(); got != "answer" {
		t.Fatalf("Expected 'answer', got %q", got)
	}

	r := FailureResult(&APIError{StatusCode: 401, Body: "invalid key"})
	if r.OK() {
		t.Fatal("Expected failure result")
	}
	if got := r.Display(); got != "Error: API Error (401): invalid key" {
		t.Fatalf("Unexpected display %q", got)
	}
}

func TestNormalizeAPIKey(t *testing.T) {
	tests := map[string]string{
		"Bearer abc123":        "abc123",
		"abc123":               "abc123",
		"Bearer Bearer abc123": "Bearer abc123",
		"bearer abc123":        "bearer abc123",
		"":                     "",
	}
	for in, want := range tests {
		if got := NormalizeAPIKey(in); got != want {
			t.Errorf("NormalizeAPIKey(%q) = %q, want %q", in, got, want)
		}
	}

	if got := AuthorizationHeader("Bearer abc123"); got != "Bearer abc123" {
		t.Errorf("AuthorizationHeader() = %q", got)
	}
}

func TestWireTemperature(t *testing.T) {
	if got := WireTemperature(nil); got != 1 {
		t.Fatalf("Expected 1 for omitted temperature, got %v", got)
	}
	zero := 0.0
	if got := WireTemperature(&zero); got != 0 {
		t.Fatalf("Expected explicit 0 to be kept, got %v", got)
	}
}
