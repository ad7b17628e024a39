package ai

import (
	"context"
	"testing"

	"msgassist/pkg/config"
)

type stubCompleter struct {
	text string
}

func (s stubCompleter) Complete(ctx context.Context, req CompletionRequest) Result {
	return TextResult(s.text)
}

func (s stubCompleter) CompleteStream(ctx context.Context, req CompletionRequest, onDelta DeltaFunc) Result {
	if onDelta != nil {
		onDelta(s.text)
	}
	return TextResult(s.text)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected registry, got nil")
	}
	if r.factories == nil {
		t.Fatal("expected factories map, got nil")
	}
	if r.info == nil {
		t.Fatal("expected info map, got nil")
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(BackendInfo{Type: "stub", Name: "Stub"}, func(cfg BackendConfig) (Completer, error) {
		return stubCompleter{text: cfg.Config.Model}, nil
	})

	if list := r.ListBackends(); len(list) != 1 || list[0].Name != "Stub" {
		t.Fatalf("expected backend to be listed, got %+v", list)
	}

	cfg := config.Default()
	cfg.Model = "from-config"
	c, err := r.GetBackend(BackendConfig{Type: "stub", Config: cfg})
	if err != nil {
		t.Fatalf("GetBackend() error: %v", err)
	}
	if got := c.Complete(context.Background(), CompletionRequest{}).Text; got != "from-config" {
		t.Fatalf("expected factory to receive config, got %q", got)
	}
}

func TestRegistry_GetBackend_UnknownType(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetBackend(BackendConfig{Type: "unknown"}); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestRegistry_ListBackendsSorted(t *testing.T) {
	r := NewRegistry()
	factory := func(cfg BackendConfig) (Completer, error) { return stubCompleter{}, nil }
	r.Register(BackendInfo{Type: "zeta"}, factory)
	r.Register(BackendInfo{Type: "alpha"}, factory)

	list := r.ListBackends()
	if len(list) != 2 || list[0].Type != "alpha" || list[1].Type != "zeta" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestDefaultRegistry_HasGroq(t *testing.T) {
	for _, info := range ListBackends() {
		if info.Type == BackendGroq {
			return
		}
	}
	t.Fatal("expected groq backend to self-register")
}

func TestValidateBackendType(t *testing.T) {
	if bt, ok := ValidateBackendType(" OpenAI "); !ok || bt != BackendOpenAI {
		t.Fatalf("expected openai, got %q %v", bt, ok)
	}
	if _, ok := ValidateBackendType("copilot"); ok {
		t.Fatal("expected copilot to be rejected")
	}
}

func TestGetCompleterFromConfig_DefaultsToGroq(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "bogus"

	c, err := GetCompleterFromConfig(cfg)
	if err != nil {
		t.Fatalf("GetCompleterFromConfig() error: %v", err)
	}
	client, ok := c.(*Client)
	if !ok {
		t.Fatalf("expected *Client, got %T", c)
	}
	if client.url != cfg.APIURL || client.model != cfg.Model {
		t.Fatalf("expected client built from config, got url=%q model=%q", client.url, client.model)
	}
}
