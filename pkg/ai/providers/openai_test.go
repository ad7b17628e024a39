package providers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"msgassist/pkg/ai"
	"msgassist/pkg/config"
)

func newTestOpenAIBackend(t *testing.T, apiURL string) ai.Completer {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = "openai"
	cfg.APIURL = apiURL
	cfg.Model = "test-model"
	backend, err := NewOpenAIBackend(ai.BackendConfig{Type: ai.BackendOpenAI, Config: cfg})
	if err != nil {
		t.Fatalf("NewOpenAIBackend() error: %v", err)
	}
	return backend
}

func writeSSE(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for _, event := range events {
		_, _ = w.Write([]byte(event))
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func chunkEvent(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "test-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"delta":         map[string]any{"content": content},
				"finish_reason": nil,
			},
		},
	}
	data, _ := json.Marshal(payload)
	return "data: " + string(data) + "\n\n"
}

func TestOpenAIBackend_Stream(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		writeSSE(w, chunkEvent("Hel"), chunkEvent("lo"), "data: [DONE]\n\n")
	}))
	defer server.Close()

	backend := newTestOpenAIBackend(t, server.URL+"/openai/v1/chat/completions")

	var deltas []string
	result := backend.CompleteStream(context.Background(), ai.CompletionRequest{
		Transcript: []ai.ChatTurn{{Role: ai.RoleUser, Content: "alice: hi"}},
		APIKey:     "Bearer sdk-key",
	}, func(d string) { deltas = append(deltas, d) })

	if !result.OK() || result.Text != "Hello" {
		t.Fatalf("Expected 'Hello', got %q", result.Display())
	}
	if strings.Join(deltas, "|") != "Hel|lo" {
		t.Fatalf("Unexpected deltas %v", deltas)
	}
	if gotPath != "/openai/v1/chat/completions" {
		t.Fatalf("Expected path '/openai/v1/chat/completions', got %q", gotPath)
	}
	if gotAuth != "Bearer sdk-key" {
		t.Fatalf("Expected single Bearer prefix, got %q", gotAuth)
	}
	if stream, _ := gotPayload["stream"].(bool); !stream {
		t.Fatalf("Expected stream=true, got %v", gotPayload["stream"])
	}
	if temp, _ := gotPayload["temperature"].(float64); math.Abs(temp-1) > 0.0001 {
		t.Fatalf("Expected wire default temperature 1, got %v", gotPayload["temperature"])
	}
	if maxTokens, _ := gotPayload["max_completion_tokens"].(float64); int(maxTokens) != 1024 {
		t.Fatalf("Expected max_completion_tokens 1024, got %v", gotPayload["max_completion_tokens"])
	}
	if topP, _ := gotPayload["top_p"].(float64); topP != 1 {
		t.Fatalf("Expected top_p 1, got %v", gotPayload["top_p"])
	}
	if model, _ := gotPayload["model"].(string); model != "test-model" {
		t.Fatalf("Expected model 'test-model', got %v", gotPayload["model"])
	}
}

func TestOpenAIBackend_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	result := newTestOpenAIBackend(t, server.URL+"/v1").Complete(context.Background(), ai.CompletionRequest{APIKey: "bad"})

	if result.OK() {
		t.Fatal("Expected failure")
	}
	if result.Failure.Kind != ai.FailureAPI || result.Failure.Status != http.StatusUnauthorized {
		t.Fatalf("Expected api failure with 401, got %+v", result.Failure)
	}
	if !strings.Contains(result.Display(), "invalid key") || !strings.Contains(result.Display(), "401") {
		t.Fatalf("Expected status and body in %q", result.Display())
	}
}

func TestNewOpenAIBackend_RequiresURL(t *testing.T) {
	cfg := config.Default()
	cfg.APIURL = "  "
	if _, err := NewOpenAIBackend(ai.BackendConfig{Type: ai.BackendOpenAI, Config: cfg}); err == nil {
		t.Fatal("Expected error for empty api_url")
	}
}

func TestSDKBaseURL(t *testing.T) {
	tests := map[string]string{
		"https://api.groq.com/openai/v1/chat/completions":  "https://api.groq.com/openai/v1",
		"https://api.groq.com/openai/v1/chat/completions/": "https://api.groq.com/openai/v1",
		"https://api.openai.com/v1":                        "https://api.openai.com/v1",
		"":                                                 "",
	}
	for in, want := range tests {
		if got := sdkBaseURL(in); got != want {
			t.Errorf("sdkBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegisteredBackends(t *testing.T) {
	registered := map[ai.BackendType]bool{}
	for _, info := range ai.ListBackends() {
		registered[info.Type] = true
	}
	for _, bt := range []ai.BackendType{ai.BackendGroq, ai.BackendOpenAI, ai.BackendGoogle} {
		if !registered[bt] {
			t.Errorf("expected %s to be registered", bt)
		}
	}
}

func TestBuildParams_UserTurns(t *testing.T) {
	b, err := NewOpenAIBackend(ai.BackendConfig{Type: ai.BackendOpenAI, Config: config.Default()})
	if err != nil {
		t.Fatalf("NewOpenAIBackend() error: %v", err)
	}
	params := b.(*OpenAIBackend).buildParams(ai.CompletionRequest{Transcript: []ai.ChatTurn{
		{Role: ai.RoleUser, Content: "alice: hi"},
		{Role: ai.RoleUser, Content: "why?"},
	}})
	if len(params.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(params.Messages))
	}
	for i, m := range params.Messages {
		if m.OfUser == nil {
			t.Fatalf("message %d: expected a user message", i)
		}
	}
}
