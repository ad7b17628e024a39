package providers

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"msgassist/pkg/ai"
	"msgassist/pkg/config"

	"google.golang.org/genai"
)

const googleDefaultModel = "gemini-2.5-flash"

func init() {
	ai.RegisterBackend(ai.BackendInfo{
		Type:        ai.BackendGoogle,
		Name:        "Google",
		Description: "Gemini through the native Google AI SDK",
	}, NewGoogleBackend)
}

type googleModelsClient interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// newGoogleModels builds a models client bound to one API key.
var newGoogleModels = func(ctx context.Context, cfg *genai.ClientConfig) (googleModelsClient, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// GoogleBackend implements ai.Completer using the native Google AI SDK.
type GoogleBackend struct {
	model      string
	httpClient *http.Client
}

// NewGoogleBackend creates the backend from config. The Groq default model
// name is not a Gemini model, so it is replaced by the Gemini default.
func NewGoogleBackend(cfg ai.BackendConfig) (ai.Completer, error) {
	model := strings.TrimSpace(cfg.Config.Model)
	if model == "" || model == config.DefaultModel {
		model = googleDefaultModel
	}

	return &GoogleBackend{
		model:      model,
		httpClient: cfg.HTTPClient,
	}, nil
}

// Complete streams the answer and returns it once the stream ends.
func (b *GoogleBackend) Complete(ctx context.Context, req ai.CompletionRequest) ai.Result {
	return b.CompleteStream(ctx, req, nil)
}

// CompleteStream is Complete with onDelta called for every fragment.
func (b *GoogleBackend) CompleteStream(ctx context.Context, req ai.CompletionRequest, onDelta ai.DeltaFunc) (result ai.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("google_completion_panic", "panic", r)
			result = ai.FailureResult(fmt.Errorf("%v", r))
		}
	}()

	text, err := b.stream(ctx, req, onDelta)
	if err != nil {
		slog.Error("google_completion_error", "error", err)
		return ai.FailureResult(err)
	}
	return ai.TextResult(text)
}

func (b *GoogleBackend) stream(ctx context.Context, req ai.CompletionRequest, onDelta ai.DeltaFunc) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = b.model
	}

	models, err := newGoogleModels(ctx, &genai.ClientConfig{
		APIKey:     ai.NormalizeAPIKey(req.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: b.httpClient,
	})
	if err != nil {
		return "", &ai.RequestError{Err: fmt.Errorf("create google client: %w", err)}
	}

	contents := buildGoogleContents(req.Transcript)
	slog.Info("google_completion_request", "model", model, "turns", len(contents))

	var answer strings.Builder
	for resp, err := range models.GenerateContentStream(ctx, model, contents, buildGoogleConfig(req)) {
		if err != nil {
			return "", err
		}

		fullText := extractVisibleText(resp)
		if fullText == "" {
			continue
		}

		// Some responses repeat the text so far instead of sending a delta.
		delta := fullText
		if current := answer.String(); current != "" && strings.HasPrefix(fullText, current) {
			delta = fullText[len(current):]
		}
		if delta == "" {
			continue
		}

		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return answer.String(), nil
}

func buildGoogleContents(transcript []ai.ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		contents = append(contents, &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: turn.Content},
			},
		})
	}
	return contents
}

func buildGoogleConfig(req ai.CompletionRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(ai.WireTemperature(req.Temperature))),
		TopP:            genai.Ptr(float32(ai.TopP)),
		MaxOutputTokens: int32(ai.MaxCompletionTokens),
	}
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// Ensure interface compliance
var _ ai.Completer = (*GoogleBackend)(nil)
