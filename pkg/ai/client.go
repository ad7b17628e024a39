package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"msgassist/pkg/config"
)

func init() {
	RegisterBackend(BackendInfo{
		Type:        BackendGroq,
		Name:        "Groq",
		Description: "Streaming chat completions over raw HTTP (OpenAI-compatible wire format)",
	}, newGroqBackend)
}

// Client performs one streaming chat-completion POST per call.
type Client struct {
	httpClient *http.Client
	url        string
	model      string
}

// NewClient creates a streaming client for the given endpoint and model.
// Empty values fall back to the Groq defaults. The HTTP client carries no
// timeout of its own; deadlines come from the context passed to Complete.
func NewClient(url, model string, httpClient *http.Client) *Client {
	if strings.TrimSpace(url) == "" {
		url = config.DefaultAPIURL
	}
	if strings.TrimSpace(model) == "" {
		model = config.DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		url:        url,
		model:      model,
	}
}

func newGroqBackend(cfg BackendConfig) (Completer, error) {
	return NewClient(cfg.Config.APIURL, cfg.Config.Model, cfg.HTTPClient), nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []wireMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	TopP                float64       `json:"top_p"`
	Stream              bool          `json:"stream"`
	Stop                []string      `json:"stop"`
}

// Complete streams the answer and returns it once the body is drained.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) Result {
	return c.CompleteStream(ctx, req, nil)
}

// CompleteStream is Complete with onDelta called for every fragment.
func (c *Client) CompleteStream(ctx context.Context, req CompletionRequest, onDelta DeltaFunc) (result Result) {
	// onDelta is caller code; a panic there must not escape as a crash.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("completion_panic", "panic", r)
			result = FailureResult(fmt.Errorf("%v", r))
		}
	}()

	text, err := c.stream(ctx, req, onDelta)
	if err != nil {
		slog.Error("completion_error", "error", err)
		return FailureResult(err)
	}

	slog.Info("completion_done", "model", c.model, "chars", len(text))
	return TextResult(text)
}

func (c *Client) stream(ctx context.Context, req CompletionRequest, onDelta DeltaFunc) (string, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return "", err
	}

	slog.Info("completion_request",
		"url", c.url,
		"model", c.model,
		"turns", len(req.Transcript),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readCompletion(resp, onDelta)
}

func (c *Client) newRequest(ctx context.Context, req CompletionRequest) (*http.Request, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	messages := make([]wireMessage, 0, len(req.Transcript))
	for _, turn := range req.Transcript {
		messages = append(messages, wireMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	body := chatCompletionRequest{
		Model:               model,
		Messages:            messages,
		Temperature:         WireTemperature(req.Temperature),
		MaxCompletionTokens: MaxCompletionTokens,
		TopP:                TopP,
		Stream:              true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", AuthorizationHeader(req.APIKey))

	return httpReq, nil
}

// readCompletion drains a completion response, accumulating deltas.
func readCompletion(resp *http.Response, onDelta DeltaFunc) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body []byte
		if resp.Body != nil {
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return "", fmt.Errorf("failed to read error body: %w", err)
			}
			body = data
		}
		slog.Error("completion_http_error", "status", resp.StatusCode, "body", string(body))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if resp.Body == nil {
		return "", ErrStreamUnavailable
	}
	// An empty 200 (net/http hands it over as NoBody) is an empty answer.
	if resp.Body == http.NoBody {
		return "", nil
	}

	var answer strings.Builder
	events := NewEventReader(resp.Body)
	for events.Next() {
		delta, ok := deltaContent(events.Data())
		if !ok {
			continue
		}
		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := events.Err(); err != nil {
		return "", err
	}

	if !events.SawDone() {
		slog.Debug("completion_stream_ended_without_done")
	}
	return answer.String(), nil
}

var _ Completer = (*Client)(nil)
