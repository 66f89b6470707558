package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockProvider is a scripted provider for tests. Responses are returned in
// the order they were queued, and every request is recorded for inspection.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []Request
}

type mockResponse struct {
	completion Completion
	err        error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

// AddTextResponse queues a plain-text completion.
func (m *MockProvider) AddTextResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{
		completion: Completion{Kind: CompletionText, Text: text},
	})
}

// AddToolCalls queues a completion that requests the given tool calls.
func (m *MockProvider) AddToolCalls(calls ...ToolCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{
		completion: Completion{Kind: CompletionToolCalls, ToolCalls: calls},
	})
}

// AddError queues a failed completion.
func (m *MockProvider) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
}

func (m *MockProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return Completion{}, fmt.Errorf("mock provider: no response queued for request %d", len(m.requests))
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.err != nil {
		return Completion{}, next.err
	}
	return next.completion, nil
}

// Requests returns a copy of every request seen so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Call builds a ToolCall with marshaled arguments, for test scripting.
func Call(id, name string, args map[string]any) ToolCall {
	raw, _ := json.Marshal(args)
	return ToolCall{ID: id, Name: name, Arguments: raw}
}
