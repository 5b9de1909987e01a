package llm

import (
	"context"
	"sync"
)

// MockCompleter is a configurable Completer for tests.
// Set CompleteFunc to control behavior; calls are recorded.
type MockCompleter struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns Response and nil error.
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)

	// Response is returned when CompleteFunc is nil.
	Response string

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu       sync.Mutex
	requests []CompletionRequest
}

// NewMockCompleter returns a mock that always answers with response.
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

// Complete implements Completer.
func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return m.Response, nil
}

// Model implements Completer.
func (m *MockCompleter) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls returns the number of Complete invocations.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or a zero value.
func (m *MockCompleter) LastRequest() CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

var _ Completer = (*MockCompleter)(nil)
