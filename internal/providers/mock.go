package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockBackend is a Backend for testing.
type MockBackend struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)
	Response   string

	// Responses, when non-empty, are returned in order; the last entry
	// repeats once the queue is exhausted. Lets tests drive a retry loop
	// with invalid-then-valid output.
	Responses []string

	mu           sync.Mutex
	requests     []*ChatRequest
	requestCount atomic.Int64
}

// NewMockBackend creates a mock backend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Latency:  time.Millisecond,
		Response: "mock response",
	}
}

// Name returns the backend identifier.
func (m *MockBackend) Name() string {
	return MockName
}

// Chat returns the configured response.
func (m *MockBackend) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := m.requestCount.Add(1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.ShouldFail {
		return nil, fmt.Errorf("mock backend configured to fail: %w", ErrUnavailable)
	}
	if m.FailAfter > 0 && int(count) > m.FailAfter {
		return nil, fmt.Errorf("mock backend failed after %d requests: %w", m.FailAfter, ErrUnavailable)
	}

	select {
	case <-time.After(m.Latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	content := m.Response
	if len(m.Responses) > 0 {
		idx := int(count) - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		content = m.Responses[idx]
	}

	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += len(msg.Content) / 4 // rough estimate
	}

	return &ChatResult{
		Content:          content,
		Provider:         MockName,
		ModelUsed:        req.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: len(content) / 4,
		TotalTokens:      promptTokens + len(content)/4,
		ExecutionTime:    time.Since(start),
		RequestID:        fmt.Sprintf("mock-%d", count),
	}, nil
}

// RequestCount returns the number of requests made.
func (m *MockBackend) RequestCount() int64 {
	return m.requestCount.Load()
}

// Requests returns a copy of all recorded requests.
func (m *MockBackend) Requests() []*ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears the request log and counter.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
	m.requestCount.Store(0)
}

// Verify interface
var _ Backend = (*MockBackend)(nil)
