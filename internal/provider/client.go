package provider

import (
	"context"
	"fmt"
	"time"

	"subtrans/internal/services"
)

// Client wraps a Provider with retry handling. Rate-limit errors are retried
// with a linearly growing backoff; every other failure surfaces immediately.
type Client struct {
	provider   Provider
	maxRetries int
	retryDelay time.Duration
	sleeper    func(context.Context, time.Duration) error
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a retrying client around the given backend.
// maxRetries counts total attempts; retryDelay is the base backoff unit, so
// attempt n waits n*retryDelay before the next try.
func NewClient(p Provider, maxRetries int, retryDelay time.Duration, opts ...ClientOption) *Client {
	client := &Client{
		provider:   p,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleeper:    sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// TranslateBatch sends one prompt and returns the raw response text.
// On rate limiting it waits retryDelay*(attempt+1) between attempts; after
// maxRetries attempts it fails with services.ErrRateLimited.
func (c *Client) TranslateBatch(ctx context.Context, req Request) (string, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := c.provider.Send(ctx, req)
		if err == nil {
			return text, nil
		}
		if !IsRateLimit(err) {
			return "", services.Wrap(services.ErrProvider, c.provider.Name(), "translate_batch", "provider request failed", err)
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		wait := c.retryDelay * time.Duration(attempt+1)
		if err := c.sleeper(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", services.Wrap(services.ErrRateLimited, c.provider.Name(), "translate_batch",
		fmt.Sprintf("rate limit exceeded after %d attempts", attempts), lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
