package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestError_Error_Parts(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeEndpoint,
		Message:    "server error",
		StatusCode: 503,
		Model:      "gpt-4o",
		Endpoint:   "https://router.huggingface.co/v1",
	}

	result := err.Error()
	for _, want := range []string{"endpoint", "HTTP 503", "model=gpt-4o", "endpoint=router.huggingface.co", "server error"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in %q", want, result)
		}
	}
	if strings.Contains(result, "/v1") {
		t.Errorf("endpoint should be reduced to its host: %s", result)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrorTypeUnknown, "completion error", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantCode int
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrorTypeTimeout, 0},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), ErrorTypeTimeout, 0},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, ErrorTypeAuth, 401},
		{"unauthorized text", errors.New("Unauthorized"), ErrorTypeAuth, 0},
		{"model missing", errors.New("The model `x` does not exist"), ErrorTypeModel, 0},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, ErrorTypeRateLimit, 429},
		{"not found", &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("not found")}, ErrorTypeEndpoint, 404},
		{"refused", errors.New("dial tcp 127.0.0.1:9: connect: connection refused"), ErrorTypeEndpoint, 0},
		{"bad gateway", &openai.APIError{HTTPStatusCode: 502, Message: "upstream"}, ErrorTypeEndpoint, 502},
		{"other", errors.New("weird"), ErrorTypeUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.wantCode)
			}
		})
	}
}

func TestClassifyError_PassesThroughStructured(t *testing.T) {
	orig := NewError(ErrorTypeEmpty, "no content", nil)
	if got := ClassifyError(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("expected the original *Error back")
	}
	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}
