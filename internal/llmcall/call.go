// Package llmcall records every backend call to a JSONL log for
// traceability. A skipped document's rejection history is only useful
// if the operator can see what the model actually said.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedwatch/fedwatch/internal/providers"
)

// Call is one recorded backend call.
type Call struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	Schema   string `json:"schema"`
	Document string `json:"document,omitempty"`
	Attempt  int    `json:"attempt"`

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Response
	Response string `json:"response,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FromChatResult builds a Call from a backend exchange. Either result
// or err may be nil.
func FromChatResult(schema, document string, attempt int, req *providers.ChatRequest, result *providers.ChatResult, err error) *Call {
	call := &Call{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Schema:    schema,
		Document:  document,
		Attempt:   attempt,
		Success:   err == nil,
	}
	if req != nil {
		call.Model = req.Model
	}
	if result != nil {
		call.LatencyMs = int(result.ExecutionTime.Milliseconds())
		call.Provider = result.Provider
		call.Model = result.ModelUsed
		call.InputTokens = result.PromptTokens
		call.OutputTokens = result.CompletionTokens
		call.Response = result.Content
	}
	if err != nil {
		call.Error = err.Error()
	}
	return call
}
