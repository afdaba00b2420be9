package provider

import (
	"context"
	"errors"
	"fmt"
)

// Request carries one prompt to a model backend.
type Request struct {
	SystemPrompt string
	Prompt       string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Provider sends a single prompt to one LLM backend and returns the raw
// response text. Implementations must return a RateLimitError when the
// backend signals request throttling, so Client can distinguish retryable
// failures.
type Provider interface {
	Name() string
	Send(ctx context.Context, req Request) (string, error)
}

// RateLimitError marks a provider failure caused by request throttling.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is a provider rate-limit condition.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
