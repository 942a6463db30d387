package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Body values for Post/Put are JSON-serialized by the implementation; a nil body
// sends the request without a payload.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
	Put(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}
