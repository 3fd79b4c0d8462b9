// Package providers implements the language-model backend boundary.
//
// A Backend accepts prompt text and returns model output text. Provider
// specifics (request shape, auth, transport retries) stay behind this
// interface; schema validation is deliberately not done here because
// structured-output guarantees vary in strength across providers and
// must be enforced backend-agnostically by the caller.
package providers

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the backend itself is unreachable or erroring
// independent of input. Callers should abort the run rather than burn
// per-document retries against a dead backend.
var ErrUnavailable = errors.New("backend unavailable")

// Backend is the capability a model provider must offer: accept a
// prompt, return text. Implementations must be safe for sequential
// reuse across documents in a run.
type Backend interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the backend identifier (e.g. "gemini", "openai").
	Name() string
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user"
	Content string `json:"content"`
}

// ChatRequest is a request to a model backend.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model overrides the backend's default model when set.
	Model string `json:"model,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// RequestID tags the call for logging; generated if empty.
	RequestID string `json:"-"`
}

// ChatResult is the response from a backend call.
type ChatResult struct {
	Content   string `json:"content"`
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`
	RequestID     string        `json:"request_id"`
}
