package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// BackendConfig defines a single backend to instantiate from config.
type BackendConfig struct {
	Type    string // "openai", "gemini", "openrouter", "mock"
	Model   string // Default model name
	APIKey  string // Resolved API key
	Enabled bool
}

// Registry holds named model backends and provides thread-safe access.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	logger   *slog.Logger
}

// NewRegistry creates a new empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		logger:   slog.Default(),
	}
}

// NewRegistryFromConfig creates a registry with backends based on
// configuration. Only enabled backends with valid API keys are registered.
func NewRegistryFromConfig(ctx context.Context, cfgs map[string]BackendConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry()
	if logger != nil {
		r.logger = logger
	}

	for name, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		backend, err := NewBackend(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend %q: %w", name, err)
		}
		if backend == nil {
			continue
		}
		r.Register(name, backend)
	}

	return r, nil
}

// NewBackend creates a backend from its config. Returns nil for backend
// types that require an API key when none is configured.
func NewBackend(ctx context.Context, cfg BackendConfig) (Backend, error) {
	switch cfg.Type {
	case OpenAIName:
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
		}), nil
	case GeminiName:
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
		})
	case OpenRouterName:
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
		}), nil
	case MockName:
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

// Register registers a backend by name.
func (r *Registry) Register(name string, backend Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = backend
	if r.logger != nil {
		r.logger.Info("registered backend", "name", name, "type", backend.Name())
	}
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("backend not found: %s", name)
	}
	return backend, nil
}

// Has checks if a backend is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[name]
	return ok
}

// List returns all registered backend names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
