package ai

import (
	"context"
	"strings"
)

// Role identifies the speaker of a chat turn. Every turn sent by this
// system is a user turn.
type Role string

const RoleUser Role = "user"

// ChatTurn is a single role/content pair of a transcript.
type ChatTurn struct {
	Role    Role
	Content string
}

const (
	// MaxCompletionTokens caps every answer.
	MaxCompletionTokens = 1024
	// TopP is sent unchanged on every request.
	TopP = 1.0
	// wireDefaultTemperature is used when a request carries no temperature.
	wireDefaultTemperature = 1.0

	bearerPrefix = "Bearer "
)

// CompletionRequest is built fresh for every ask and discarded afterwards.
type CompletionRequest struct {
	Transcript  []ChatTurn
	APIKey      string
	Temperature *float64
	// Model overrides the backend's configured model when set.
	Model string
}

// DeltaFunc receives each text fragment as it arrives.
type DeltaFunc func(delta string)

// Completer turns a transcript into an answer. Implementations never return
// errors; every failure is reported through the Result.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) Result
	CompleteStream(ctx context.Context, req CompletionRequest, onDelta DeltaFunc) Result
}

// NormalizeAPIKey strips a single leading "Bearer " so the header can add
// exactly one back.
func NormalizeAPIKey(key string) string {
	return strings.TrimPrefix(key, bearerPrefix)
}

// AuthorizationHeader returns the header value for key.
func AuthorizationHeader(key string) string {
	return bearerPrefix + NormalizeAPIKey(key)
}

// WireTemperature resolves the temperature sent on the wire.
func WireTemperature(t *float64) float64 {
	if t == nil {
		return wireDefaultTemperature
	}
	return *t
}
