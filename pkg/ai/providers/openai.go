package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"msgassist/pkg/ai"
	"msgassist/pkg/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

func init() {
	ai.RegisterBackend(ai.BackendInfo{
		Type:        ai.BackendOpenAI,
		Name:        "OpenAI SDK",
		Description: "Any OpenAI-compatible endpoint through the official openai-go client",
	}, NewOpenAIBackend)
}

// OpenAIBackend issues the completion through the openai-go SDK.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend creates the backend from config. The API key is supplied
// per request, so none is bound here.
func NewOpenAIBackend(cfg ai.BackendConfig) (ai.Completer, error) {
	baseURL := sdkBaseURL(cfg.Config.APIURL)
	if baseURL == "" {
		return nil, fmt.Errorf("openai backend requires api_url")
	}

	model := strings.TrimSpace(cfg.Config.Model)
	if model == "" {
		model = config.DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIBackend{
		client: client,
		model:  model,
	}, nil
}

// sdkBaseURL turns the configured endpoint into the SDK's base URL.
func sdkBaseURL(apiURL string) string {
	u := strings.TrimSpace(apiURL)
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return u
}

// Complete streams the answer and returns it once the stream ends.
func (b *OpenAIBackend) Complete(ctx context.Context, req ai.CompletionRequest) ai.Result {
	return b.CompleteStream(ctx, req, nil)
}

// CompleteStream is Complete with onDelta called for every fragment.
func (b *OpenAIBackend) CompleteStream(ctx context.Context, req ai.CompletionRequest, onDelta ai.DeltaFunc) (result ai.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("openai_completion_panic", "panic", r)
			result = ai.FailureResult(fmt.Errorf("%v", r))
		}
	}()

	params := b.buildParams(req)
	slog.Info("openai_completion_request", "model", params.Model, "turns", len(req.Transcript))

	stream := b.client.Chat.Completions.NewStreaming(ctx, params,
		option.WithAPIKey(ai.NormalizeAPIKey(req.APIKey)),
	)
	if err := stream.Err(); err != nil {
		slog.Error("openai_completion_error", "error", err)
		return ai.FailureResult(mapOpenAIError(err))
	}
	defer stream.Close()

	var answer strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	if err := stream.Err(); err != nil {
		slog.Error("openai_completion_error", "error", err)
		return ai.FailureResult(mapOpenAIError(err))
	}

	return ai.TextResult(answer.String())
}

func (b *OpenAIBackend) buildParams(req ai.CompletionRequest) openai.ChatCompletionNewParams {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = b.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Transcript))
	for _, turn := range req.Transcript {
		messages = append(messages, openai.UserMessage(turn.Content))
	}

	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		Temperature:         openai.Float(ai.WireTemperature(req.Temperature)),
		MaxCompletionTokens: openai.Int(ai.MaxCompletionTokens),
		TopP:                openai.Float(ai.TopP),
	}
}

// mapOpenAIError converts SDK status errors into ai.APIError so callers can
// branch on the failure kind.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := strings.TrimSpace(apiErr.Message)
		if body == "" {
			body = err.Error()
		}
		return &ai.APIError{StatusCode: apiErr.StatusCode, Body: body}
	}
	return err
}

// Ensure interface compliance
var _ ai.Completer = (*OpenAIBackend)(nil)
