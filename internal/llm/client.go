package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned when no model credential is configured.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyResponse is returned when the provider answers with no candidate.
var ErrEmptyResponse = errors.New("empty model response")

// Client sends generation requests to a model provider.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Dialer creates a Client. It returns ErrMissingAPIKey (possibly wrapped) when
// credentials are absent.
type Dialer func(ctx context.Context) (Client, error)

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *Request) (*Response, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
