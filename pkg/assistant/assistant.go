// Package assistant ties the message store, the context collector and a
// completion backend together behind the "ask AI" action.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"msgassist/pkg/ai"
	"msgassist/pkg/chat"
	"msgassist/pkg/config"
	"msgassist/pkg/logging"
	"msgassist/pkg/store"

	"github.com/google/uuid"
)

// MenuIcon is shown next to the action label.
const MenuIcon = "✦"

// ErrQuestionRequired rejects a blank prompt when no context could be loaded.
var ErrQuestionRequired = errors.New("a question is required when context is unavailable")

// MenuAction is the per-message entry offered to the host.
type MenuAction struct {
	Label     string
	Icon      string
	MessageID string
}

// Assistant is safe for concurrent use. Each ask reads the current
// configuration once.
type Assistant struct {
	store     store.Store
	completer ai.Completer

	mu  sync.RWMutex
	cfg config.Config
}

// New creates an Assistant. cfg may later be replaced with SetConfig.
func New(st store.Store, completer ai.Completer, cfg config.Config) *Assistant {
	return &Assistant{store: st, completer: completer, cfg: cfg}
}

// Config returns the configuration currently in effect.
func (a *Assistant) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// SetConfig replaces the configuration used by subsequent asks.
func (a *Assistant) SetConfig(cfg config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// Action describes the menu entry for target.
func (a *Assistant) Action(target chat.Message) MenuAction {
	return MenuAction{
		Label:     a.Config().Settings().DisplayName,
		Icon:      MenuIcon,
		MessageID: target.ID,
	}
}

// History loads a channel and its messages for display.
func (a *Assistant) History(ctx context.Context, channelID string) (chat.Channel, []chat.Message, error) {
	ch, err := a.store.Channel(ctx, channelID)
	if err != nil {
		return chat.Channel{}, nil, err
	}
	msgs, err := a.store.Messages(ctx, ch.ID)
	if err != nil {
		return ch, nil, err
	}
	return ch, msgs, nil
}

// Lookup finds a message by ID in a channel's history.
func (a *Assistant) Lookup(ctx context.Context, channelID, messageID string) (chat.Message, error) {
	_, msgs, err := a.History(ctx, channelID)
	if err != nil {
		return chat.Message{}, err
	}
	for _, m := range msgs {
		if m.ID == messageID {
			return m, nil
		}
	}
	return chat.Message{}, fmt.Errorf("message %s not found in channel %s", messageID, channelID)
}

// Session is one opened ask modal: the target and the context gathered for it.
type Session struct {
	assistant *Assistant

	Target  chat.Message
	Channel chat.Channel
	Context []chat.Message
	// Limited is set when gathering context failed unexpectedly. The session
	// then carries no context and requires a question.
	Limited bool
}

// Open gathers context for target. A missing channel or history leaves the
// context empty; any other store failure produces a limited session. Open
// itself never fails.
func (a *Assistant) Open(ctx context.Context, target chat.Message) (s *Session) {
	s = &Session{assistant: a, Target: target, Context: []chat.Message{}}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("context_panic", "message_id", target.ID, "panic", r)
			s = &Session{assistant: a, Target: target, Context: []chat.Message{}, Limited: true}
		}
	}()

	ch, err := a.store.Channel(ctx, target.ChannelID)
	if err != nil {
		s.Limited = contextFailure(err, "channel_lookup", target.ChannelID, target.ID)
		return s
	}
	s.Channel = ch

	msgs, err := a.store.Messages(ctx, ch.ID)
	if err != nil {
		s.Limited = contextFailure(err, "messages", ch.ID, target.ID)
		return s
	}

	s.Context = chat.SelectContext(msgs, target)
	slog.Debug("context_selected",
		"channel_id", ch.ID,
		"message_id", target.ID,
		"history", len(msgs),
		"context", len(s.Context),
	)
	return s
}

// contextFailure logs a store error and reports whether it was unexpected.
func contextFailure(err error, reason, channelID, messageID string) bool {
	if errors.Is(err, store.ErrChannelNotFound) || errors.Is(err, store.ErrMessagesUnavailable) {
		slog.Warn("context_unavailable",
			"reason", reason,
			"channel_id", channelID,
			"message_id", messageID,
			"error", err,
		)
		return false
	}
	slog.Error("context_error",
		"reason", reason,
		"channel_id", channelID,
		"message_id", messageID,
		"error", err,
	)
	return true
}

// Ask sends the target, its context and prompt to the backend and waits for
// the full answer.
func (s *Session) Ask(ctx context.Context, prompt string) ai.Result {
	return s.ask(ctx, prompt, nil)
}

// AskStream is Ask with onDelta called for every fragment as it arrives.
func (s *Session) AskStream(ctx context.Context, prompt string, onDelta ai.DeltaFunc) ai.Result {
	return s.ask(ctx, prompt, onDelta)
}

func (s *Session) ask(ctx context.Context, prompt string, onDelta ai.DeltaFunc) ai.Result {
	requestID := uuid.NewString()

	if s.Limited && strings.TrimSpace(prompt) == "" {
		slog.Info("ask_rejected", "request_id", requestID, "message_id", s.Target.ID, "reason", "limited_context")
		return ai.FailureResult(&ai.RequestError{Err: ErrQuestionRequired})
	}

	cfg := s.assistant.Config()
	settings := cfg.Settings()

	if cfg.APITimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.APITimeoutSeconds)*time.Second)
		defer cancel()
	}

	temperature := settings.Temperature
	req := ai.CompletionRequest{
		Transcript:  chat.BuildTranscript(s.Context, s.Target, prompt),
		APIKey:      settings.APIKey,
		Temperature: &temperature,
	}

	slog.Info("ask_start",
		"request_id", requestID,
		"message_id", s.Target.ID,
		"channel_id", s.Target.ChannelID,
		"context", len(s.Context),
		"limited", s.Limited,
		"temperature", temperature,
		"stream", onDelta != nil,
	)
	slog.Log(ctx, logging.LevelTrace, "ask_prompt", "request_id", requestID, "prompt", prompt)

	start := time.Now()
	var result ai.Result
	if onDelta != nil {
		result = s.assistant.completer.CompleteStream(ctx, req, onDelta)
	} else {
		result = s.assistant.completer.Complete(ctx, req)
	}

	if !result.OK() {
		slog.Warn("ask_failed",
			"request_id", requestID,
			"kind", result.Failure.Kind,
			"status", result.Failure.Status,
			"error", result.Failure.Message,
			"duration", time.Since(start),
		)
		return result
	}

	slog.Info("ask_done",
		"request_id", requestID,
		"chars", len(result.Text),
		"duration", time.Since(start),
	)
	return result
}
