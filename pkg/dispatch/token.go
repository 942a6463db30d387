package dispatch

import "context"

// TokenSource supplies the bearer token attached to authenticated requests.
// Implementations may fetch from session state, a secrets backend, etc.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token value.
type StaticToken string

// Token returns the static token.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
