// Package llm talks to the text-completion service that turns a question
// plus schema context into SQL. Two providers are supported: any
// OpenAI-compatible chat endpoint and the Anthropic Messages API.
package llm

import (
	"context"
)

// CompletionRequest is one system+user exchange.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Completer returns the completion text for a request. Implementations bound
// the call with their configured timeout and return *Error on failure.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Model returns the configured model name.
	Model() string
}
