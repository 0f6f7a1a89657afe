package provider

import (
	"context"
	"fmt"
)

// Client performs the GET requests providers depend on. Connection pooling,
// retries, TLS and timeouts are its concern, not the providers'.
type Client interface {
	// Get returns the response body. Non-2xx responses fail with *StatusError.
	Get(ctx context.Context, url string) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, url string) (string, error)

func (f ClientFunc) Get(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// StatusError is returned by a Client for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
