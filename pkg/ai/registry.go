package ai

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"msgassist/pkg/config"
)

// BackendType names a completion backend.
type BackendType string

const (
	BackendGroq   BackendType = "groq"
	BackendOpenAI BackendType = "openai"
	BackendGoogle BackendType = "google"
)

// BackendConfig holds everything a factory needs to build a Completer.
type BackendConfig struct {
	Type       BackendType
	Config     config.Config
	HTTPClient *http.Client
}

// BackendFactory creates a Completer from config.
type BackendFactory func(cfg BackendConfig) (Completer, error)

// BackendInfo describes a registered backend.
type BackendInfo struct {
	Type        BackendType
	Name        string
	Description string
}

// Registry manages backend factories and instantiation.
type Registry struct {
	mu        sync.RWMutex
	factories map[BackendType]BackendFactory
	info      map[BackendType]BackendInfo
}

// NewRegistry creates a new backend registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[BackendType]BackendFactory),
		info:      make(map[BackendType]BackendInfo),
	}
}

// Register adds a backend factory to the registry.
func (r *Registry) Register(info BackendInfo, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[info.Type] = factory
	r.info[info.Type] = info
}

// GetBackend creates a Completer by type.
func (r *Registry) GetBackend(cfg BackendConfig) (Completer, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}

	return factory(cfg)
}

// ListBackends returns all registered backends sorted by type.
func (r *Registry) ListBackends() []BackendInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]BackendInfo, 0, len(r.info))
	for _, info := range r.info {
		backends = append(backends, info)
	}
	sort.Slice(backends, func(i, j int) bool {
		return backends[i].Type < backends[j].Type
	})
	return backends
}

// DefaultRegistry is the global backend registry.
var DefaultRegistry = NewRegistry()

// RegisterBackend registers a backend with the default registry.
func RegisterBackend(info BackendInfo, factory BackendFactory) {
	DefaultRegistry.Register(info, factory)
}

// ListBackends returns all backends from the default registry.
func ListBackends() []BackendInfo {
	return DefaultRegistry.ListBackends()
}

// ValidateBackendType checks if a backend type string is supported.
func ValidateBackendType(s string) (BackendType, bool) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	switch bt {
	case BackendGroq, BackendOpenAI, BackendGoogle:
		return bt, true
	}
	return "", false
}

// GetCompleterFromConfig creates the Completer selected by cfg.Backend,
// defaulting to groq.
func GetCompleterFromConfig(cfg config.Config) (Completer, error) {
	backendType, ok := ValidateBackendType(cfg.Backend)
	if !ok {
		backendType = BackendGroq
	}

	return DefaultRegistry.GetBackend(BackendConfig{
		Type:   backendType,
		Config: cfg,
	})
}
